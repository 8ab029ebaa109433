/*
Package errors implements the error model shared by every quorum package.

Reuse the root errors declared here as much as possible and only register a
new root error when a package needs a class of failure that callers must tell
apart. Use Register(code, description) during program startup.

Create errors at the point of failure with ErrXyz.New/Newf or Wrap so that a
stack trace is attached once, at the innermost frame. Don't declare package
level `var ErrFoo = errors.ErrInput.New("foo")` values or the stack trace
will point at package initialization.

Formatting an error:
	%s is just the error message
	%+v is the full stack trace

Contracts running on the host return these errors to revert. Code(err)
recovers the numeric code of the root cause, which is what the host puts into
receipts.
*/
package errors
