// Package apperr defines the typed application error carried from a
// service operation to the HTTP error translator.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine code alongside the
// human-readable message.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Kind returns the error family name used in response bodies.
func (e *Error) Kind() string {
	switch e.Status {
	case http.StatusBadRequest:
		return "Validation Error"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusTooManyRequests:
		return "Rate Limited"
	case http.StatusServiceUnavailable:
		return "Upstream Unavailable"
	default:
		return "Internal Server Error"
	}
}

// New builds an Error with an explicit status.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// NotFound reports an absent entity. Entities the caller does not own use
// the same code as entities that do not exist, so existence never leaks.
func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

// Validation reports a missing or malformed required field.
func Validation(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// Conflict reports a unique-constraint violation.
func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

// Forbidden reports an authenticated caller acting outside its rights.
func Forbidden(code, message string) *Error {
	return New(http.StatusForbidden, code, message)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

// Unavailable reports an unreachable backing service.
func Unavailable(code, message string) *Error {
	return New(http.StatusServiceUnavailable, code, message)
}

// Internal reports an unexpected failure.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
