package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeUnsupported  ErrorType = "UNSUPPORTED"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
)

// Error codes attached to AppError.Code.
const (
	CodeInvalidCursor          = "INVALID_CURSOR"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeOwnerProtected         = "OWNER_PROTECTED"
	CodeInsufficientPrivileges = "INSUFFICIENT_PRIVILEGES"
	CodeClubNameTaken          = "CLUB_NAME_TAKEN"
	CodeClubExists             = "CLUB_EXISTS"
	CodeMembershipExists       = "MEMBERSHIP_EXISTS"
	CodeConcurrentUpdate       = "CONCURRENT_UPDATE"
	CodeUnsupportedLookup      = "UNSUPPORTED_LOOKUP"
	CodeStorageFailure         = "STORAGE_FAILURE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetail sets a single detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(t ErrorType, status int, message string) *AppError {
	return &AppError{Type: t, Message: message, HTTPStatus: status}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message).WithCode(CodeInvalidInput)
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError(message).WithDetail("field", field)
}

// NewInvalidCursorError reports a malformed pagination cursor
func NewInvalidCursorError(cause error) *AppError {
	return NewValidationError("invalid pagination cursor").
		WithCode(CodeInvalidCursor).
		WithCause(cause)
}

// NewInvalidTransitionError reports an illegal state or role transition
func NewInvalidTransitionError(kind, from, to string) *AppError {
	return NewValidationError(fmt.Sprintf("invalid %s transition from %s to %s", kind, from, to)).
		WithCode(CodeInvalidTransition).
		WithDetails(map[string]interface{}{"from": from, "to": to})
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message)
}

// NewAuthorizationError creates a structured denial naming the missing capability.
func NewAuthorizationError(capability, userID, resource string) *AppError {
	msg := fmt.Sprintf("missing capability %s", capability)
	if resource != "" {
		msg = fmt.Sprintf("missing capability %s on %s", capability, resource)
	}
	details := map[string]interface{}{
		"capability": capability,
		"userId":     userID,
	}
	if resource != "" {
		details["resource"] = resource
	}
	return NewForbiddenError(msg).
		WithCode(CodeInsufficientPrivileges).
		WithDetails(details)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message)
}

// NewStorageError wraps a failed storage operation.
func NewStorageError(operation string, err error) *AppError {
	return NewInternalError(fmt.Sprintf("storage operation '%s' failed", operation)).
		WithCode(CodeStorageFailure).
		WithCause(err)
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, fmt.Sprintf("service '%s' is unavailable", service))
}

// NewUnsupportedError reports an operation the system deliberately does not implement.
func NewUnsupportedError(message string) *AppError {
	return newAppError(ErrorTypeUnsupported, http.StatusNotImplemented, message)
}

// NewRateLimitError reports a caller over its request budget
func NewRateLimitError(message string) *AppError {
	return newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests, message)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// HasCode checks the Code of the first AppError in the chain
func HasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

func IsNotFound(err error) bool     { return IsType(err, ErrorTypeNotFound) }
func IsValidation(err error) bool   { return IsType(err, ErrorTypeValidation) }
func IsUnauthorized(err error) bool { return IsType(err, ErrorTypeUnauthorized) }
func IsForbidden(err error) bool    { return IsType(err, ErrorTypeForbidden) }
func IsConflict(err error) bool     { return IsType(err, ErrorTypeConflict) }
func IsInternal(err error) bool     { return IsType(err, ErrorTypeInternal) }

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
