package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error kinds. Typed errors elsewhere unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrInput             = errors.New("invalid input")
	ErrNetwork           = errors.New("upstream call failed")
	ErrParse             = errors.New("model output is not valid JSON")
	ErrFormat            = errors.New("model output violates the schema")
	ErrValue             = errors.New("model output has invalid values")
	ErrGeneration        = errors.New("document generation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInternal          = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InputError is a user-correctable error (empty prompt, missing field).
func InputError(message string) error {
	return NewAppError("INPUT_ERROR", message, ErrInput)
}

// GenerationError aborts document production.
func GenerationError(message string, cause error) error {
	if cause == nil {
		cause = ErrGeneration
	} else {
		cause = fmt.Errorf("%w: %w", ErrGeneration, cause)
	}
	return NewAppError("GENERATION_ERROR", message, cause)
}

// HTTPStatus maps an error kind onto the status code surfaced to clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInput), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
