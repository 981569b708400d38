package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the store, the collaborator service and the HTTP client.
var (
	ErrNotFound      = errors.New("not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrValidation    = errors.New("validation error")
	ErrRemoteFailure = errors.New("remote failure")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
