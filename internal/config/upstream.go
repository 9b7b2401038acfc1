package config

import (
	"os"
	"strings"
)

// UpstreamEnv is the variable holding the backend base address.
const UpstreamEnv = "API_BASE_URL"

// Upstream supplies the backend base address. Implementations are read on
// every proxied call so a changed environment takes effect without restart.
type Upstream interface {
	BaseURL() string
}

// EnvUpstream reads API_BASE_URL from the process environment.
type EnvUpstream struct{}

// BaseURL returns the trimmed value of API_BASE_URL, or "" when unset.
func (EnvUpstream) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(os.Getenv(UpstreamEnv)), "/")
}

// StaticUpstream is a fixed base address.
type StaticUpstream string

// BaseURL returns the address without a trailing slash.
func (s StaticUpstream) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(string(s)), "/")
}
