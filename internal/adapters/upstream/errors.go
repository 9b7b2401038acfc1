package upstream

import "errors"

// Sentinel error kinds for forwarding.
var (
	// ErrNoBaseURL means API_BASE_URL is not configured. No call was made.
	ErrNoBaseURL = errors.New("API_BASE_URL environment variable is not set")
	// ErrTransport wraps network failures and request construction errors.
	ErrTransport = errors.New("upstream transport failed")
	// ErrDecode means the upstream body was not valid JSON.
	ErrDecode = errors.New("upstream response is not valid JSON")
)
