// Package apperror defines the application error taxonomy. Service and
// store code wraps failures in an *AppError; the HTTP layer maps the
// sentinel in the chain to a status code with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a human-readable message alongside the sentinel.
type AppError struct {
	Err     error  // sentinel the HTTP layer maps on
	Message string // safe to show to the user
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource, ref string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, ref),
	}
}

// Validation reports a rejected input field.
func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness or state conflict.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden reports a caller lacking permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports a missing or unusable credential.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
