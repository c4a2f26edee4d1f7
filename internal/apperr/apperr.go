// Package apperr defines the error kinds shared by the stores, the vote engine
// and the HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal failure")
)

// Error is a kinded error carrying a caller-facing message and an optional cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Kind returns the sentinel the error was built with.
func (e *Error) Kind() error {
	return e.kind
}

// Message returns the caller-facing message without the cause.
func (e *Error) Message() string {
	return e.msg
}

func newError(kind error, cause error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, nil, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, nil, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, nil, format, args...)
}

// Conflict wraps a store-level uniqueness failure.
func Conflict(cause error, format string, args ...any) error {
	return newError(ErrConflict, cause, format, args...)
}

// Internal wraps an unexpected store or infrastructure failure.
func Internal(cause error, format string, args ...any) error {
	return newError(ErrInternal, cause, format, args...)
}

// Status maps an error to the HTTP status the API responds with.
// Errors of unknown kind are internal.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show to API callers. Internal
// failures never leak their cause.
func PublicMessage(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
