// ABOUTME: Error taxonomy for the session client
// ABOUTME: Network, HTTP and session-expiry failures callers can match with errors.Is/As

package client

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned when an authenticated call got a 401
	// and the refresh attempt failed. Stored credentials are already cleared.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrInvalidResponse wraps a 2xx response whose body is not the expected JSON
	ErrInvalidResponse = errors.New("invalid response from backend")
)

// NetworkError is a transport-level failure: unreachable host, canceled or
// timed-out request. It is never retried by the client.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	if errors.Is(e.Err, context.Canceled) {
		return "request canceled"
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "request timed out"
	}
	var timeout interface{ Timeout() bool }
	if errors.As(e.Err, &timeout) && timeout.Timeout() {
		return "request timed out"
	}
	return fmt.Sprintf("cannot connect to backend at %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response other than an authenticated 401 that
// was recovered by a refresh.
type HTTPError struct {
	Status  int
	Message string
	// Body is the structured error body when the backend sent one
	Body *ErrorBody
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an HTTPError with the given status code
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
