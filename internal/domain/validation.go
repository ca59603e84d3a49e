package domain

import (
	"errors"
	"fmt"
)

// ErrValidation matches every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationFields collects field messages from every ValidationError in err's tree.
func ValidationFields(err error) map[string]string {
	fields := make(map[string]string)
	collectValidationFields(err, fields)

	return fields
}

func collectValidationFields(err error, fields map[string]string) {
	switch e := err.(type) { //nolint:errorlint
	case nil:
		return
	case *ValidationError:
		if _, ok := fields[e.Field]; !ok {
			fields[e.Field] = e.Message
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectValidationFields(inner, fields)
		}
	case interface{ Unwrap() error }:
		collectValidationFields(e.Unwrap(), fields)
	}
}
