package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingToken       = errors.New("missing auth token")
	ErrInvalidToken       = errors.New("invalid auth token")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrRequestTimeout     = errors.New("request timeout")
	ErrServiceTimeout     = errors.New("service timeout")
)

// ValidationError describes the first constraint a payload violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
