package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeInvalidArgument  ErrorType = "INVALID_ARGUMENT"
	ErrorTypeInvalidOperation ErrorType = "INVALID_OPERATION"

	// Collaborator errors
	ErrorTypeCatalogUnavailable ErrorType = "CATALOG_UNAVAILABLE"
	ErrorTypeExternal           ErrorType = "EXTERNAL"

	// Transport errors
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
	ErrorTypeInternal     ErrorType = "INTERNAL"
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

// WithDetail adds a single detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInvalidArgumentError creates an invalid argument error
func NewInvalidArgumentError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidArgument,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidOperationError creates an error for an operation the current state forbids
func NewInvalidOperationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidOperation,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewCatalogUnavailableError creates a catalog unavailable error
func NewCatalogUnavailableError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeCatalogUnavailable,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    fmt.Sprintf("external service '%s' error", service),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError() *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
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

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return IsType(err, ErrorTypeInvalidArgument)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return IsType(err, ErrorTypeInvalidOperation)
}

// IsCatalogUnavailable checks if an error is a catalog unavailable error
func IsCatalogUnavailable(err error) bool {
	return IsType(err, ErrorTypeCatalogUnavailable)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, keep its type and prefix the message
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
