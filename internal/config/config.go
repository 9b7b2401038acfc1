// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer file and env on top.
// - The upstream base address is not part of the snapshot; see Upstream.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ServiceName is reported by /healthz and used as the tracer resource name.
	ServiceName string `koanf:"service_name"`

	// IdentityHeader is the header the external identity provider sets on page requests.
	IdentityHeader string `koanf:"identity_header"`

	// UpstreamTimeoutMS bounds a forwarded call. Zero leaves it to the transport.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// TrustedImagePrefix is the only accepted prefix for submitted image URLs.
	TrustedImagePrefix string `koanf:"trusted_image_prefix"`

	// MaxVotes bounds the voting selection when upstream does not report remaining votes.
	MaxVotes int `koanf:"max_votes"`

	// DefaultTemperature is shown when the agent state has no temperature.
	DefaultTemperature float64 `koanf:"default_temperature"`

	// InstructionsPath points to a markdown file replacing the embedded instructions.
	InstructionsPath string `koanf:"instructions_path"`

	// MaxBodyBytes caps inbound request bodies on the proxy.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults. The context is accepted first
// to satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		ServiceName:        "arcade",
		IdentityHeader:     "X-Forwarded-User",
		UpstreamTimeoutMS:  0,
		TrustedImagePrefix: "https://th.bing.com/th/id/",
		MaxVotes:           3,
		DefaultTemperature: 0.7,
		InstructionsPath:   "",
		MaxBodyBytes:       1 << 20,
	}
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.UpstreamTimeoutMS < 0 {
		return fmt.Errorf("%w: upstream_timeout_ms must not be negative", ErrInvalidConfig)
	}
	u, err := url.Parse(c.TrustedImagePrefix)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: trusted_image_prefix must be an https URL prefix", ErrInvalidConfig)
	}
	if c.MaxVotes < 1 {
		return fmt.Errorf("%w: max_votes must be at least 1", ErrInvalidConfig)
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 2 {
		return fmt.Errorf("%w: default_temperature must be within [0,2]", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
