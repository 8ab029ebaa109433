package errors

import (
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none of the given errors is non-nil, nil is returned. A single non-nil
// error is returned as it is.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unpack implements the unpacker interface.
func (m multiErr) Unpack() []error {
	return []error(m)
}

// unpacker is implemented by errors that group several errors together.
type unpacker interface {
	Unpack() []error
}
