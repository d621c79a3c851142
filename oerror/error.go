package oerror

import "fmt"

// Error is the error type returned by netmove packages. Errors are comparable with errors.Is by
// message, so package level sentinels built with New can be matched after being returned.
type Error struct {
	Err string
}

// New creates a new Error, formatting the message with the arguments passed.
func New(message string, args ...any) *Error {
	if len(args) == 0 {
		return &Error{Err: message}
	}
	return &Error{Err: fmt.Sprintf(message, args...)}
}

// Error ...
func (e *Error) Error() string {
	return e.Err
}

// Is reports whether target is an *Error carrying the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == e.Err
}
