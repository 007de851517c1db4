package api

import (
	"fmt"
	"net/http"
)

const (
	MsgRateLimited      = "Rate limit exceeded. Please try again later."
	MsgMissingFields    = "Missing required fields: modelName and messages"
	MsgMissingServerKey = "Server configuration error: API key not set"
	MsgNotFound         = "Not found"
)

// Error is a handler error rendered as an ErrorResponse by the error middleware.
type Error struct {
	// HTTP status written to the client
	Status int
	// Safe message for the client
	Message string
	// Model echoed back in the envelope, if any
	Model string
	// Seconds for the Retry-After header, 0 when not applicable
	RetryAfter int
	// Original error for internal logging
	Log error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Log
}

// Envelope converts the error into the wire shape.
func (e *Error) Envelope() ErrorResponse {
	return ErrorResponse{Success: false, Error: e.Message, Model: e.Model}
}

type ErrorOption func(*Error)

func NewError(status int, message string, opts ...ErrorOption) *Error {
	e := &Error{Status: status, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithModel echoes the requested model in the response envelope.
func WithModel(model string) ErrorOption {
	return func(e *Error) {
		e.Model = model
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ErrorOption {
	return func(e *Error) {
		e.Log = err
	}
}

func BadRequestError(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusBadRequest, message, opts...)
}

func NotFoundError(message string, opts ...ErrorOption) *Error {
	return NewError(http.StatusNotFound, message, opts...)
}

func InternalError(message string, err error) *Error {
	return NewError(http.StatusInternalServerError, message, WithLog(err))
}

// RateLimitError carries the number of seconds the client should wait.
func RateLimitError(retryAfter int) *Error {
	return NewError(http.StatusTooManyRequests, MsgRateLimited, WithModel("unknown"), func(e *Error) {
		e.RetryAfter = retryAfter
	})
}

// UpstreamError relays a provider failure with the provider's status code.
func UpstreamError(status int, message, model string, err error) *Error {
	return NewError(status, message, WithModel(model), WithLog(err))
}
