package api

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("service unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// User-facing fallbacks.
const (
	MsgConnection = "connection error, check your internet"
	MsgServer     = "server error"
)

// Error is a normalized API failure. Status is 0 when no response arrived.
type Error struct {
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return http.StatusText(e.Status) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.err }

func transportError(cause error) *Error {
	return &Error{Message: MsgConnection, err: errors.Join(ErrUnavailable, cause)}
}

func statusError(status int, message string) *Error {
	if message == "" {
		message = MsgServer
	}
	e := &Error{Status: status, Message: message}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.err = ErrUnauthorized
	case http.StatusNotFound:
		e.err = ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		e.err = ErrUnavailable
	}
	return e
}

// Message returns the text to show a user for err: the API's own message
// when err is an *Error, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, 0 for transport
// failures and -1 when err did not come from this package.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}
