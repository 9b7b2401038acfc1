package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrMissingTeam     = errors.New("team-name header is required")
	ErrInvalidBody     = errors.New("Invalid request body") //nolint:staticcheck // message is part of the wire contract
	ErrMissingUpstream = errors.New("API_BASE_URL environment variable is not set")
	ErrUpstream        = errors.New("upstream returned an error")
	ErrTransport       = errors.New("Internal server error") //nolint:staticcheck // message is part of the wire contract
)

// Error carries the operation that failed, its sentinel kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind builds an Error with no underlying cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind builds an Error of the given kind around err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
