// Package apperr defines the error kinds every store and handler speaks.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidState     = "INVALID_STATE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError is a failure with a stable code and a human-readable message.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// HTTPStatus returns the HTTP status code
func (e *AppError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func NotFound(message string) *AppError {
	if message == "" {
		message = "not found"
	}
	return New(CodeNotFound, message, http.StatusNotFound)
}

// InvalidState reports an operation attempted from a status that forbids it.
func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict)
}

// Unauthorized reports a known caller acting outside their rights
// (not a participant, not the hirer, wrong role).
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return New(CodeUnauthorized, message, http.StatusForbidden)
}

// Unauthenticated reports a missing or unverifiable caller identity.
func Unauthenticated(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return New(CodeUnauthenticated, message, http.StatusUnauthorized)
}

func ValidationFailed(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// Internal wraps an unexpected store or infrastructure failure.
func Internal(err error, message string) *AppError {
	if message == "" {
		message = "internal error"
	}
	return Wrap(err, CodeInternalError, message, http.StatusInternalServerError)
}

// As extracts an *AppError from the chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}

// CodeOf returns the error code, INTERNAL_ERROR for foreign errors and "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return CodeInternalError
}
