// Package apierr builds error responses of the stub, shaped as the ML database service does.
package apierr

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorMessage is a body of error responses.
type ErrorMessage struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e ErrorMessage) String() string {
	if e.Cause != nil {
		return e.Error + " caused by: " + e.Cause.Error()
	}
	return e.Error
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithDetails(details string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		in.Details = details
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		in.Cause = err
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Error: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}
	herr := echo.NewHTTPError(code, msg)
	if msg.Cause != nil {
		herr = herr.SetInternal(msg.Cause)
	}
	return herr
}

func NotFound(reason string) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, reason)
}

func BadRequest(reason string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, reason, WithError(err))
}
