package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeRender           ErrorType = "RENDER_ERROR"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
)

type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Error constructors
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

func NewNotFoundError(kind, key string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s %q not found", kind, key),
	}
}

// NewStoreUnavailableError wraps a failure of the content backend. The cause is
// kept for logging and never rendered to visitors.
func NewStoreUnavailableError(backend string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeStoreUnavailable,
		Message: fmt.Sprintf("Error from content store (%s)", backend),
		Details: err.Error(),
		cause:   err,
	}
}

func NewRenderError(page string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeRender,
		Message: fmt.Sprintf("Error rendering %s page", page),
		Details: err.Error(),
		cause:   err,
	}
}

func NewInternalError(err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: "Internal server error",
		Details: err.Error(),
		cause:   err,
	}
}

// TypeOf returns the ErrorType of the first APIError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeInternal
}

func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}
