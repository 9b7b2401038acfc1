package client

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for proxy calls.
var (
	// ErrStatus matches any non-2xx proxy answer; use errors.As for *StatusError.
	ErrStatus = errors.New("proxy returned an error status")
	// ErrTransport wraps network failures.
	ErrTransport = errors.New("proxy request failed")
	// ErrDecode means a success body could not be decoded.
	ErrDecode = errors.New("proxy response could not be decoded")
	// ErrInvalidFormat means the body decoded but has an unexpected shape.
	ErrInvalidFormat = errors.New("Received invalid response format from the server") //nolint:staticcheck // shown to users
)

// StatusError is a non-2xx proxy answer with its relayed message.
type StatusError struct {
	Status  int
	Message string
	Details []string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Is reports ErrStatus so callers can match without a type assertion.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Message returns the relayed message of a StatusError, or fallback.
func Message(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
