package errors

import (
	"fmt"
	"strings"
)

// FieldError is one failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates multiple field validation failures
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationErrors creates an empty collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]FieldError, 0)}
}

// Add records a failed field
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	messages := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// ToMap groups messages by field
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, e := range v.Errors {
		result[e.Field] = append(result[e.Field], e.Message)
	}
	return result
}

// AsAppError converts the collection into a single VALIDATION AppError, or nil
// when nothing failed.
func (v *ValidationErrors) AsAppError() error {
	if !v.HasErrors() {
		return nil
	}
	msg := v.Errors[0].Message
	if len(v.Errors) > 1 {
		msg = v.Error()
	}
	fields := make(map[string]interface{}, len(v.Errors))
	for field, msgs := range v.ToMap() {
		fields[field] = msgs
	}
	return NewValidationError(msg).
		WithDetail("fields", fields).
		WithDetail("field", v.Errors[0].Field)
}
