// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure unwraps to exactly one of these.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrBusinessRule = errors.New("business rule violation")
	ErrInvalidState = errors.New("invalid state transition")
)

// Error carries a user-facing message together with its kind.
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

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// NotFound reports a reference that does not resolve.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// BusinessRule reports an operation that violates a domain rule.
func BusinessRule(format string, args ...any) error {
	return newError(ErrBusinessRule, format, args...)
}

// InvalidState reports an illegal entity transition.
func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

// Message returns the user-facing message of a domain error and
// false when err is not one.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
