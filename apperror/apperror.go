// Package apperror defines the error kinds handlers return and the HTTP
// status each one maps to.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindConflict     Kind = "CONFLICT"
	KindAuth         Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidToken Kind = "INVALID_TOKEN"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Error is returned by services and controllers and rendered by the
// application error handler.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports every invalid field at once.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Fields: fields}
}

// ValidationField is a shortcut for a single invalid field.
func ValidationField(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func InvalidToken(message string) *Error {
	return &Error{Kind: KindInvalidToken, Status: http.StatusBadRequest, Message: message}
}

// Internal wraps an unexpected failure. The message is safe to show to
// clients; the cause is only logged.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
