package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports a draft that cannot be logged.
// errors.Is(err, ErrValidation) matches it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
