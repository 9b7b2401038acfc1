// Package probe exercises the proxy contract of a running arcade server.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/arcade/internal/client"
	"github.com/okian/arcade/pkg/logger"
)

// ErrChecksFailed is returned when at least one smoke check fails.
var ErrChecksFailed = errors.New("smoke checks failed")

type probeCall struct {
	name   string
	method string
	path   string
	body   string
}

// teamScoped lists every endpoint that must reject a request without a team.
var teamScoped = []probeCall{
	{"submit", http.MethodPost, "/api/pic-perfect/submit", `{"image_url":"https://th.bing.com/th/id/probe","prompt":"probe"}`},
	{"team-status", http.MethodGet, "/api/pic-perfect/team-status", ""},
	{"vote", http.MethodPost, "/api/pic-perfect/vote", `{"voted_teams":["probe"]}`},
	{"voting-pool", http.MethodGet, "/api/pic-perfect/voting-pool", ""},
	{"available-tools", http.MethodGet, "/api/pubg/agent/available-tools", ""},
	{"chat-history", http.MethodGet, "/api/pubg/agent/chat", ""},
	{"chat-send", http.MethodPost, "/api/pubg/agent/chat", `{"message":"probe"}`},
	{"get-state", http.MethodGet, "/api/pubg/agent/state", ""},
	{"patch-state", http.MethodPatch, "/api/pubg/agent/state", `{"temperature":1}`},
	{"list-tools", http.MethodGet, "/api/pubg/agent/tool", ""},
	{"create-tool", http.MethodPost, "/api/pubg/agent/tool", `{"tool_name":"probe","description":"probe"}`},
	{"update-tool", http.MethodPatch, "/api/pubg/agent/tool", `{"tool_name":"probe","description":"probe"}`},
	{"delete-tool", http.MethodDelete, "/api/pubg/agent/tool/probe", ""},
}

// invalidBodies lists bodies that must be rejected before forwarding.
var invalidBodies = []probeCall{
	{"vote-empty", http.MethodPost, "/api/pic-perfect/vote", `{"voted_teams":[]}`},
	{"chat-empty", http.MethodPost, "/api/pubg/agent/chat", `{"message":""}`},
	{"tool-no-description", http.MethodPost, "/api/pubg/agent/tool", `{"tool_name":"probe"}`},
	{"state-temperature", http.MethodPatch, "/api/pubg/agent/state", `{"temperature":3}`},
	{"submit-no-prompt", http.MethodPost, "/api/pic-perfect/submit", `{"image_url":"https://th.bing.com/th/id/probe"}`},
}

// Smoke runs the contract checks and reads the public endpoints.
func Smoke(ctx context.Context, cfg *Config) (*Report, error) {
	log := logger.Named("probe")
	report := &Report{StartTime: time.Now()}
	c := newClient(cfg)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("team", cfg.Team),
		logger.String("timeout", cfg.Timeout.String()))

	health := run(ctx, c, probeCall{"healthz", http.MethodGet, "/healthz", ""}, "", http.StatusOK)
	report.Checks = append(report.Checks, health)
	if health.Err != nil {
		return report, fmt.Errorf("service health check failed: %w", health.Err)
	}

	for _, pc := range teamScoped {
		report.Checks = append(report.Checks, run(ctx, c, probeCall{"no-team/" + pc.name, pc.method, pc.path, pc.body}, "", http.StatusBadRequest))
	}
	for _, pc := range invalidBodies {
		report.Checks = append(report.Checks, run(ctx, c, pc, cfg.Team, http.StatusBadRequest))
	}

	if lb, err := c.Leaderboard(ctx); err != nil {
		log.Warn(ctx, "leaderboard read failed", logger.Error(err))
	} else {
		report.LeaderboardEntries = len(lb.Leaderboard)
	}
	if st, err := c.Status(ctx); err != nil {
		log.Warn(ctx, "status read failed", logger.Error(err))
	} else {
		report.ChallengeState = string(st.ChallengeState)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	displayReport(ctx, log, report, cfg.Verbose)

	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrChecksFailed, len(failed), len(report.Checks))
	}
	return report, nil
}

func newClient(cfg *Config) *client.Client {
	return client.New(cfg.BaseURL, client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
}

func run(ctx context.Context, c *client.Client, pc probeCall, team string, want int) Check {
	check := Check{Name: pc.name, Method: pc.method, Path: pc.path, Want: want}
	var body any
	if pc.body != "" {
		body = []byte(pc.body)
	}
	start := time.Now()
	resp, err := c.Do(ctx, pc.method, pc.path, team, body)
	check.Duration = time.Since(start)
	if err != nil {
		check.Err = err
		return check
	}
	check.Got = resp.Status
	return check
}

func displayReport(ctx context.Context, log logger.Logger, r *Report, verbose bool) {
	for _, c := range r.Checks {
		fields := []logger.Field{
			logger.String("check", c.Name),
			logger.String("method", c.Method),
			logger.String("path", c.Path),
			logger.Int("want", c.Want),
			logger.Int("got", c.Got),
			logger.String("duration", c.Duration.String()),
		}
		switch {
		case !c.Passed():
			if c.Err != nil {
				fields = append(fields, logger.Error(c.Err))
			}
			log.Error(ctx, "check failed", fields...)
		case verbose:
			log.Info(ctx, "check passed", fields...)
		}
	}
	log.Info(ctx, "smoke summary",
		logger.Int("checks", len(r.Checks)),
		logger.Int("failed", len(r.Failed())),
		logger.Int("leaderboardEntries", r.LeaderboardEntries),
		logger.String("challengeState", r.ChallengeState),
		logger.String("duration", r.Duration.String()))
}
