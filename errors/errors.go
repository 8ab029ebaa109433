package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrInternal represents a general case issue that cannot be
	// categorized as any of the below cases.
	ErrInternal = Register(1, "internal")

	// ErrUnauthorized is used whenever a request without sufficient
	// authorization is handled.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is used when a requested operation cannot be completed
	// due to missing data.
	ErrNotFound = Register(3, "not found")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(4, "invalid input")

	// ErrDuplicate is returned when an entry is already present in a set
	// that does not allow duplicates.
	ErrDuplicate = Register(5, "duplicate")

	// ErrState is returned when an object is in invalid state.
	ErrState = Register(6, "invalid state")

	// ErrType is returned whenever the type is not what was expected.
	ErrType = Register(7, "invalid type")

	// ErrAmount stands for an invalid or insufficient amount of funds.
	ErrAmount = Register(8, "invalid amount")

	// ErrDatabase is returned when the underlying storage fails.
	ErrDatabase = Register(9, "database")

	// ErrHuman is returned when application reaches a code path which should not
	// ever be reached if the code was written as expected by the framework.
	ErrHuman = Register(10, "coding error")

	// ErrThreshold is returned when a threshold is unset or out of range.
	ErrThreshold = Register(20, "invalid threshold")

	// ErrSignature is returned when a signature bundle is malformed, a
	// signer is not an owner, or signers are not strictly increasing.
	ErrSignature = Register(21, "invalid signature")

	// ErrNotApproved is returned when a pre-approved signature refers to
	// a hash the signer never approved.
	ErrNotApproved = Register(22, "hash not approved")

	// ErrGuardVeto is returned when a guard rejects an execution.
	ErrGuardVeto = Register(23, "guard veto")

	// ErrAddressOccupied is returned when a deterministic deployment
	// targets an address that already holds code.
	ErrAddressOccupied = Register(30, "address occupied")

	// ErrDeployment is returned when a deployment cannot be completed,
	// for example because the initializer reverted.
	ErrDeployment = Register(31, "deployment failed")

	// ErrOutOfGas is returned when a call frame exhausts its gas budget.
	ErrOutOfGas = Register(40, "out of gas")

	// ErrRevert is returned when a callee reverted without a more
	// specific error.
	ErrRevert = Register(41, "execution reverted")

	// ErrWriteProtection is returned when a state change is attempted in
	// a static call.
	ErrWriteProtection = Register(42, "write protection")

	// ErrNoCode is returned when a call expects code at an address that
	// has none.
	ErrNoCode = Register(43, "no code")

	// ErrDelegateOnly is returned by library code that must only run in
	// a delegated context.
	ErrDelegateOnly = Register(44, "delegate call only")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base for
// creating error instances during runtime.
//
// Popular root errors are declared in this package, but extensions may want to
// declare custom codes. This function ensures that no error code is used
// twice. Attempt to reuse an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness. No two
// error instances should share the same error code.
var usedCodes = map[uint32]*Error{}

// Error represents a root error.
//
// Each instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to the
// client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the registered numeric code.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause set to
// this error. Below two lines are equal
//   e.New("my description")
//   Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is check if given error instance is of a given kind/type. This involves
// unwrapping given error using the Cause method if available.
func (e *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if e == nil {
		return isNilErr(err)
	}

	for {
		if err == e {
			return true
		}

		// If this is a collection of errors, this function must return
		// true if at least one from the group match.
		if u, ok := err.(unpacker); ok {
			for _, er := range u.Unpack() {
				if e.Is(er) {
					return true
				}
			}
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Wrap extends given error with an additional information.
//
// If the wrapped error does not provide Code method (ie. stdlib errors),
// it will be labeled as internal error.
//
// If err is nil, this returns nil, avoiding the need for an if statement when
// wrapping a error returned at the end of a function
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet, attach
	// one. This should be done only once per error at the lowest frame
	// possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional funtionality of
// formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Format prints the stack trace of the innermost wrap when %+v is used.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		if st := stackTrace(e); st != nil {
			fmt.Fprintf(s, "%s\n%+v", e.Error(), st)
			return
		}
	}
	fmt.Fprint(s, e.Error())
}

// Recover captures a panic and stop its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call this
// function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok && Code(e) != ErrInternal.code {
			// Panics carrying one of our own errors, for example a
			// storage failure surfaced from deep inside the host, keep
			// their classification.
			*err = Wrap(e, "recovered")
			return
		}
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// Code returns the code of the registered root error of given error. Errors
// that do not wrap a registered error are reported as ErrInternal.
func Code(err error) uint32 {
	if isNilErr(err) {
		return 0
	}
	for {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		return ErrInternal.code
	}
}

// causer is an interface implemented by an error that supports wrapping. Use
// it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

func isNilErr(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if err == nil {
		return true
	}
	switch v := reflect.ValueOf(err); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
