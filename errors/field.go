package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches err to an input field, for example a signature window of
// a bundle or an owner of a setup call. A nil err yields nil.
//
// Field names follow the Go name of the value, and elements of a list are
// addressed by index: Signatures.1, Owners.0, Records.3.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField adds the error of a field to errs. Validate methods collect
// every invalid field this way instead of stopping at the first one.
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error  { return e.parent }
func (e *fieldError) Field() string { return e.field }

type fielder interface {
	Field() string
}

// FieldErrors returns the errors attached to the named field. It looks
// through collections and wrapped errors, but not into the cause of a
// matching field error.
func FieldErrors(err error, name string) []error {
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == name {
			return []error{err}
		}
		if u, ok := err.(unpacker); ok {
			var res []error
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, name)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return nil
}
