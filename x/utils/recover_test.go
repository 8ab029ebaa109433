package utils

import (
	"context"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/quorumtest/assert"
)

func TestRecovery(t *testing.T) {
	cases := map[string]struct {
		value   interface{}
		wantErr *errors.Error
	}{
		"string":           {value: "boom", wantErr: errors.ErrPanic},
		"plain error":      {value: context.Canceled, wantErr: errors.ErrPanic},
		"registered error": {value: errors.Wrap(errors.ErrOutOfGas, "no gas"), wantErr: errors.ErrOutOfGas},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			env := quorumtest.NewWorld().Env(self, caller)
			h := panicContract{value: tc.value}

			// Panic contract panics. Test the test tool.
			assert.Panics(t, func() { _, _ = h.Run(context.Background(), env, nil) })

			// Recovery wrapped contract returns an error.
			_, err := NewRecovery().Run(context.Background(), env, nil, h)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
