package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeInternal       = "internal_error"
)

// Error is a caller-facing failure: the HTTP layer renders Status/Code and
// the message of Err verbatim.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// StatusOf reports the HTTP status for err, 500 for anything unclassified.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
