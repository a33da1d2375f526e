package ollama

import (
	"errors"
	"fmt"
)

// TransportError wraps connection failures, timeouts and cancellations.
// These are retryable from the caller's point of view.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("ollama %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ollama %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("ollama %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// DecodeError means the endpoint answered 2xx with an unparseable body.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("ollama %s: decode response: %v", e.Op, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRetryable reports whether retrying the same call may succeed:
// transport failures and 5xx answers.
func IsRetryable(err error) bool {
	if IsTransport(err) {
		return true
	}
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode >= 500
}
