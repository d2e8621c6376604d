package services

import (
	"errors"
	"fmt"
)

// Error kinds. Test with errors.Is; the HTTP layer maps each to a status.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("product unavailable")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// Error is a domain failure with a message safe to show to the caller
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error { return newError(ErrValidation, format, args...) }
func notFoundf(format string, args ...any) error   { return newError(ErrNotFound, format, args...) }
func forbiddenf(format string, args ...any) error  { return newError(ErrForbidden, format, args...) }

// KindOf returns the sentinel kind of err, or nil for internal errors
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrUnavailable, ErrInsufficientStock,
		ErrInvalidTransition, ErrConflict, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
