// Package httperr defines errors that carry the HTTP status they should be
// answered with. Handlers push them onto the gin context and the error
// handler middleware turns them into the JSON error envelope.
package httperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status           int
	Message          string
	ValidationErrors map[string]string
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ", " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// As returns the *Error inside err, if there is one
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Wrap keeps the underlying error around for logging while answering with msg
func Wrap(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

func Validation(fields map[string]string) *Error {
	return &Error{
		Status:           http.StatusBadRequest,
		Message:          "Validation Failure",
		ValidationErrors: fields,
	}
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

func TooLarge(msg string) *Error {
	return New(http.StatusRequestEntityTooLarge, msg)
}

func TooManyRequests(msg string) *Error {
	return New(http.StatusTooManyRequests, msg)
}

func BadGateway(msg string, err error) *Error {
	return Wrap(http.StatusBadGateway, msg, err)
}

func Internal(err error) *Error {
	return Wrap(http.StatusInternalServerError, "Internal server error", err)
}
