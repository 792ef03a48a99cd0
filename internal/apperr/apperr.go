// Package apperr defines the error taxonomy shared by the layout core and the
// HTTP layer.  Every error that reaches a handler is converted with From so
// that the response status and body are decided in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error kind in responses and logs.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeIntegrity    Code = "INTEGRITY"
	CodeInternal     Code = "INTERNAL"
)

// AppError carries a client-facing message plus the status it maps to.
// Cause is never rendered.
type AppError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Cause      error
	Fields     map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithField attaches structured context that is logged alongside the error.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// Public returns the message safe to show a client.  Server-side kinds never
// leak their message.
func (e *AppError) Public() string {
	if e.HTTPStatus >= http.StatusInternalServerError {
		return "internal server error"
	}
	return e.Message
}

func newErr(code Code, status int, msg string, cause error) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: status, Cause: cause}
}

func Validation(msg string) *AppError {
	return newErr(CodeValidation, http.StatusBadRequest, msg, nil)
}

func Validationf(format string, args ...interface{}) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func NotFound(msg string) *AppError {
	return newErr(CodeNotFound, http.StatusNotFound, msg, nil)
}

func Conflict(msg string) *AppError {
	return newErr(CodeConflict, http.StatusConflict, msg, nil)
}

func Forbidden(msg string) *AppError {
	return newErr(CodeForbidden, http.StatusForbidden, msg, nil)
}

func Unauthorized(msg string) *AppError {
	return newErr(CodeUnauthorized, http.StatusUnauthorized, msg, nil)
}

// Integrity reports a broken internal invariant, such as an event whose venue
// cannot be resolved.
func Integrity(msg string) *AppError {
	return newErr(CodeIntegrity, http.StatusInternalServerError, msg, nil)
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return newErr(CodeInternal, http.StatusInternalServerError, "internal error", cause)
}

// From converts any error into an AppError.  Errors that are not already
// AppErrors become opaque Internal errors.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}
