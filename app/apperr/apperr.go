// Package apperr defines the error taxonomy every business-rule failure
// maps into at the request boundary: a status, a machine-readable code and
// the human-readable message carried on the wire as {"error": ..., "code": ...}.
package apperr

import (
	"errors"
	"net/http"
)

const (
	CodeValidation     = "validation_error"
	CodeAuthentication = "authentication_error"
	CodeAuthorization  = "authorization_error"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeInternal       = "internal"
)

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

// Validation is a 400: missing or malformed input.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: msg}
}

// Unauthorized is a 401: missing, invalid or superseded token.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeAuthentication, Message: msg}
}

// Forbidden is a 403: authenticated but lacking the required role.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeAuthorization, Message: msg}
}

// NotFound is a 404: the referenced user, student or link does not exist.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// Conflict is a 409: duplicate link or capacity exceeded.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg}
}

// From returns err as an *Error, wrapping unknown errors as a generic 500
// so low-level store failures never leak their text to clients.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("Internal server error")
}
