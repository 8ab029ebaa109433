package safe

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/x/proxy"
)

func TestLayoutsArePrefixCompatible(t *testing.T) {
	for i := 1; i < len(Layouts); i++ {
		if err := CheckPrefixCompatible(Layouts[i-1], Layouts[i]); err != nil {
			t.Fatalf("%s -> %s: %s", Layouts[i-1].Version, Layouts[i].Version, err)
		}
	}
	assert.Equal(t, quorum.Version, CurrentLayout().Version)
	// Proxies and accounts share the implementation slot.
	assert.Equal(t, proxy.ImplementationSlot, SingletonSlot)
}

func TestCheckPrefixCompatible(t *testing.T) {
	prev := Layouts[0]

	edit := func(fn func(fields []Field) []Field) Layout {
		fields := append([]Field(nil), CurrentLayout().Fields...)
		return Layout{Version: "next", Fields: fn(fields)}
	}

	cases := map[string]struct {
		next      Layout
		wantErr   *errors.Error
		wantField string
	}{
		"current": {
			next: CurrentLayout(),
		},
		"renamed field": {
			next: edit(func(fields []Field) []Field {
				fields[7].Name = "_deprecatedSignedMessages"
				return fields
			}),
		},
		"dropped field": {
			next: edit(func(fields []Field) []Field {
				return fields[:len(prev.Fields)-1]
			}),
			wantErr: errors.ErrState,
		},
		"moved field": {
			next: edit(func(fields []Field) []Field {
				fields[5].Slot = quorum.Slot(50)
				return fields
			}),
			wantErr:   errors.ErrState,
			wantField: "Fields.5",
		},
		"retyped field": {
			next: edit(func(fields []Field) []Field {
				fields[4].Type = "uint8"
				return fields
			}),
			wantErr:   errors.ErrState,
			wantField: "Fields.4",
		},
		"reused slot": {
			next: edit(func(fields []Field) []Field {
				return append(fields, Field{Name: "extra", Slot: NonceSlot, Type: "uint256"})
			}),
			wantErr:   errors.ErrDuplicate,
			wantField: "Fields.11",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := CheckPrefixCompatible(prev, tc.next)
			if tc.wantField != "" {
				assert.FieldError(t, err, tc.wantField, tc.wantErr)
				return
			}
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}
