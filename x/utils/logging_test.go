package utils

import (
	"strings"
	"testing"

	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestLogging(t *testing.T) {
	cases := map[string]struct {
		contract writeContract
		want     string
		wantErr  bool
	}{
		"success": {
			contract: writeContract{},
			want:     "frame done",
		},
		"failure": {
			contract: writeContract{err: errWrite},
			want:     "frame failed",
			wantErr:  true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx, buf := bufferLogger()
			env := quorumtest.NewWorld().Env(self, caller)

			out, err := NewLogging().Run(ctx, env, []byte("in"), tc.contract)
			assert.Equal(t, tc.wantErr, err != nil)
			assert.Equal(t, []byte("in"), out)

			logs := buf.String()
			if !strings.Contains(logs, tc.want) {
				t.Fatalf("want %q in %q", tc.want, logs)
			}
			if !strings.Contains(logs, "self="+self.Hex()) {
				t.Fatalf("frame address missing in %q", logs)
			}
		})
	}
}
