package assert

import (
	"testing"

	"github.com/iov-one/quorum/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant:  errors.ErrInput,
			ErrGot:   errors.ErrInput,
			WantFail: false,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrInput,
			WantFail: true,
		},
		"both nil": {
			ErrWant:  nil,
			ErrGot:   nil,
			WantFail: false,
		},
		"wrapped": {
			ErrWant:  errors.ErrInput,
			ErrGot:   errors.Wrap(errors.ErrInput, "test"),
			WantFail: false,
		},
		"different kind": {
			ErrWant:  errors.ErrSignature,
			ErrGot:   errors.Wrap(errors.ErrInput, "test"),
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	cases := map[string]struct {
		Err      error
		Name     string
		WantErr  *errors.Error
		WantFail bool
	}{
		"ensure a single error exists and is found": {
			Err:      errors.Field("Owners.1", errors.ErrInput, "zero address"),
			Name:     "Owners.1",
			WantErr:  errors.ErrInput,
			WantFail: false,
		},
		"use nil to ensure no error was found": {
			Err:      errors.Field("Owners.1", errors.ErrInput, "zero address"),
			Name:     "Threshold",
			WantErr:  nil,
			WantFail: false,
		},
		"use nil to fail when an error was found but was not expected": {
			Err:      errors.Field("Owners.1", errors.ErrInput, "zero address"),
			Name:     "Owners.1",
			WantErr:  nil,
			WantFail: true,
		},
		"more than one error for a single field is not allowed": {
			Err: errors.Append(
				errors.Field("Owners.1", errors.ErrInput, "first"),
				errors.Field("Owners.1", errors.ErrInput, "second"),
			),
			Name:     "Owners.1",
			WantErr:  errors.ErrInput,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			FieldError(mock, tc.Err, tc.Name, tc.WantErr)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestReason(t *testing.T) {
	cases := map[string]struct {
		Reason   string
		Err      error
		WantFail bool
	}{
		"match": {
			Reason: "GS026",
			Err:    errors.Wrap(errors.ErrSignature, "GS026"),
		},
		"mismatch": {
			Reason:   "GS020",
			Err:      errors.Wrap(errors.ErrSignature, "GS026"),
			WantFail: true,
		},
		"missing error": {
			Reason:   "GS026",
			WantFail: true,
		},
		"no error expected": {},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			Reason(mock, tc.Reason, tc.Err)
			if failed := mock.failcalls > 0; tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

// tmock mocks testing.TB and only counts failure calls. It ignores all other
// input.
type tmock struct {
	testing.TB
	failcalls int
}

func (t *tmock) Error(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Errorf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}

func (t *tmock) Fatal(args ...interface{}) {
	t.TB.Log(args...)
	t.failcalls++
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.TB.Logf(s, args...)
	t.failcalls++
}
