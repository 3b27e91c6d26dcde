package errs

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries a per-field detail list for 400 responses.
type ValidationError struct {
	Details []FieldError
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, fmt.Sprintf("%s: %s", d.Field, d.Message))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError from field/message pairs.
func Validation(details ...FieldError) *ValidationError {
	return &ValidationError{Details: details}
}

// Field is a convenience constructor for FieldError.
func Field(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}
