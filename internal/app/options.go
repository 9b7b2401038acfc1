package app

import (
	"github.com/okian/arcade/internal/domain/chatlog"
	"github.com/okian/arcade/pkg/logger"
)

const (
	defaultTrustedPrefix = "https://th.bing.com/th/id/"
	defaultMaxVotes      = 3
	defaultTemperature   = 0.7
)

type settings struct {
	log           logger.Logger
	trustedPrefix string
	maxVotes      int
	temperature   float64
	checker       ImageChecker
	chatOpts      []chatlog.Option
}

func newSettings(opts []Option) settings {
	s := settings{
		trustedPrefix: defaultTrustedPrefix,
		maxVotes:      defaultMaxVotes,
		temperature:   defaultTemperature,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a view.
type Option func(*settings)

// WithLogger sets the logger used for failure reports.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTrustedImagePrefix sets the prefix every submitted image URL must carry.
func WithTrustedImagePrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.trustedPrefix = prefix
		}
	}
}

// WithMaxVotes bounds selection when upstream does not report remaining votes.
func WithMaxVotes(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxVotes = n
		}
	}
}

// WithDefaultTemperature sets the temperature shown when upstream omits it.
func WithDefaultTemperature(t float64) Option {
	return func(s *settings) {
		if t >= 0 && t <= 2 {
			s.temperature = t
		}
	}
}

// WithImageChecker enables the image preview probe on submission.
func WithImageChecker(c ImageChecker) Option {
	return func(s *settings) {
		s.checker = c
	}
}

// WithChatlogOptions passes options to the mission transcript.
func WithChatlogOptions(opts ...chatlog.Option) Option {
	return func(s *settings) {
		s.chatOpts = append(s.chatOpts, opts...)
	}
}
