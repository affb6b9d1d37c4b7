package model

import (
	"fmt"
	"time"
)

// ValidationError means required user input was missing. It is produced
// locally and never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError means a backend request could not be completed: the host
// was unreachable, the connection broke, or the response body was unreadable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError means the backend answered with a non-success status.
// Message carries the server's "error" field and may be empty.
type ApplicationError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration // from Retry-After header, zero if absent
}

func (e *ApplicationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
