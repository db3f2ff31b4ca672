package livedocx

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication failed")
	ErrType           = errors.New("type mismatch")
)

// Error is raised for every locally-detected failure.
// Transport errors are never wrapped into it, except the login fault
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return "livedocx: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
