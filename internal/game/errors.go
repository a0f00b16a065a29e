package game

import (
	"errors"
	"fmt"
)

// Failure kinds. Match with errors.Is; the concrete error is an *Error carrying a
// human-readable message.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientFuel   = errors.New("insufficient fuel")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrLimitReached       = errors.New("limit reached")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrInvalidState covers operations whose plane or package is in the wrong state.
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyEnRoute   = fmt.Errorf("%w: already en route", ErrInvalidState)
	ErrLocationMismatch = fmt.Errorf("%w: location mismatch", ErrInvalidState)
	ErrNotOnPlane       = fmt.Errorf("%w: not on plane", ErrInvalidState)
	ErrPlaneEnRoute     = fmt.Errorf("%w: plane en route", ErrInvalidState)
)

// Error is a business rule failure. It is terminal for the call and never retried.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsBusiness reports whether err is a business rule failure rather than an
// infrastructure error.
func IsBusiness(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
