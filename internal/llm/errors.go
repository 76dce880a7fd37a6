package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// UnavailableError indicates the upstream service could not serve the
// request: a connection failure or a non-2xx HTTP status.
type UnavailableError struct {
	Endpoint   string
	StatusCode int    // 0 when the request never reached the server
	Body       string // Response body excerpt, when available
	Err        error  // Underlying transport error (optional)
}

// Error implements the error interface for UnavailableError.
func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream %s unavailable: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates the upstream call exceeded its deadline. It is
// recoverable: the caller gets a clean failure, not a crash.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
	Err      error
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %s timed out after %v", e.Endpoint, e.Timeout)
}

// Unwrap returns context.DeadlineExceeded to support error wrapping.
func (e *TimeoutError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return context.DeadlineExceeded
}

// ProtocolError indicates the upstream responded with 2xx but the body did
// not have the expected shape (non-JSON, missing choices, missing data).
// It is never silently treated as "no tool chosen".
type ProtocolError struct {
	Endpoint string
	Message  string
	Err      error
}

// Error implements the error interface for ProtocolError.
func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s protocol error: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s protocol error: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsUnavailableError checks if the error is or wraps an UnavailableError.
func IsUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsTimeoutError checks if the error is or wraps a TimeoutError or
// context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsProtocolError checks if the error is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// isTimeout reports whether a transport error is a deadline/timeout rather
// than a connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
