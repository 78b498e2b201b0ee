package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// MsgSessionExpired is shown for any request rejected as unauthenticated.
const MsgSessionExpired = "Sessão expirada. Faça login novamente."

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	// ServerMessage is the message or error field of the response body, if any.
	ServerMessage string
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.ServerMessage)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Error is a failed API operation.
type Error struct {
	// Op names the operation, e.g. "get production totals".
	Op string
	// UserMessage is the text shown to the user.
	UserMessage string
	Err         error
}

// Error implements error.
func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing text. Any 401 outside login means the
// session expired.
func (e *Error) Message() string {
	if e.Op != opLogin && StatusCode(e) == http.StatusUnauthorized {
		return MsgSessionExpired
	}
	return e.UserMessage
}

// Unavailable reports whether the backend could not serve the request at
// all: it was unreachable, failed, or lacks the endpoint.
func (e *Error) Unavailable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	var herr *HTTPError
	if !errors.As(e.Err, &herr) {
		return true
	}
	return herr.StatusCode >= http.StatusInternalServerError || herr.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status behind err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func wrap(op, userMsg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, UserMessage: userMsg, Err: err}
}
