// Package client calls the proxy by its relative paths on behalf of the views.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/arcade/internal/domain/types"
)

const inProcessBase = "http://arcade.local"

// Client is a typed wrapper over the proxy endpoints.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the proxy at base. With WithHandler the base may
// be empty.
func New(base string, opts ...Option) *Client {
	c := &Client{base: strings.TrimRight(base, "/"), http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == "" {
		c.base = inProcessBase
	}
	return c
}

// Response is a raw proxy answer.
type Response struct {
	Status int
	Body   []byte
}

// Do issues a raw call. It does not interpret the status.
func (c *Client) Do(ctx context.Context, method, path, team string, body any) (*Response, error) {
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("%w: encode: %w", ErrTransport, err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if team != "" {
		req.Header.Set(types.TeamHeader, team)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTransport, path, err)
	}
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

// call issues a request and decodes a 2xx body into out when out is non-nil.
func (c *Client) call(ctx context.Context, method, path, team string, body, out any) error {
	resp, err := c.Do(ctx, method, path, team, body)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		se := &StatusError{Status: resp.Status}
		var eb types.ErrorBody
		if json.Unmarshal(resp.Body, &eb) == nil {
			se.Message, se.Details = eb.Error, eb.Details
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

// Leaderboard fetches the public leaderboard.
func (c *Client) Leaderboard(ctx context.Context) (types.Leaderboard, error) {
	var out types.Leaderboard
	err := c.call(ctx, http.MethodGet, "/api/pic-perfect/leaderboard", "", nil, &out)
	return out, err
}

// Status fetches the challenge phase.
func (c *Client) Status(ctx context.Context) (types.ChallengeStatus, error) {
	var out types.ChallengeStatus
	err := c.call(ctx, http.MethodGet, "/api/pic-perfect/status", "", nil, &out)
	return out, err
}

// TeamStatus reports whether team already submitted.
func (c *Client) TeamStatus(ctx context.Context, team string) (types.TeamStatus, error) {
	var out types.TeamStatus
	err := c.call(ctx, http.MethodGet, "/api/pic-perfect/team-status", team, nil, &out)
	return out, err
}

// Submit posts a challenge entry.
func (c *Client) Submit(ctx context.Context, team string, req types.SubmitRequest) error {
	return c.call(ctx, http.MethodPost, "/api/pic-perfect/submit", team, req, nil)
}

// VotingPool fetches the candidates for team.
func (c *Client) VotingPool(ctx context.Context, team string) (types.VotingPool, error) {
	var out types.VotingPool
	err := c.call(ctx, http.MethodGet, "/api/pic-perfect/voting-pool", team, nil, &out)
	return out, err
}

// Vote posts the selected team names.
func (c *Client) Vote(ctx context.Context, team string, votedTeams []string) (types.VoteResponse, error) {
	var out types.VoteResponse
	err := c.call(ctx, http.MethodPost, "/api/pic-perfect/vote", team, types.VoteRequest{VotedTeams: votedTeams}, &out)
	return out, err
}

// ChatHistory fetches the transcript. Upstream answers either a bare array
// or an object with a messages array.
func (c *Client) ChatHistory(ctx context.Context, team string) ([]types.APIMessage, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/api/pubg/agent/chat", team, nil, &raw); err != nil {
		return nil, err
	}
	var list []types.APIMessage
	if err := json.Unmarshal(raw, &list); err == nil && list != nil {
		return list, nil
	}
	var wrapped struct {
		Messages []types.APIMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Messages != nil {
		return wrapped.Messages, nil
	}
	return nil, ErrInvalidFormat
}

// SendChat posts a chat message.
func (c *Client) SendChat(ctx context.Context, team, message string) error {
	return c.call(ctx, http.MethodPost, "/api/pubg/agent/chat", team, types.ChatRequest{Message: message}, nil)
}

// AgentState fetches the agent configuration.
func (c *Client) AgentState(ctx context.Context, team string) (types.AgentState, error) {
	var out types.AgentState
	err := c.call(ctx, http.MethodGet, "/api/pubg/agent/state", team, nil, &out)
	return out, err
}

// UpdateAgentState patches the agent configuration.
func (c *Client) UpdateAgentState(ctx context.Context, team string, update types.StateUpdate) error {
	return c.call(ctx, http.MethodPatch, "/api/pubg/agent/state", team, update, nil)
}

// Tools lists the tools configured for team.
func (c *Client) Tools(ctx context.Context, team string) ([]types.Tool, error) {
	var out []types.Tool
	err := c.call(ctx, http.MethodGet, "/api/pubg/agent/tool", team, nil, &out)
	return out, err
}

// AvailableTools lists the tool catalog.
func (c *Client) AvailableTools(ctx context.Context, team string) ([]types.Tool, error) {
	var out []types.Tool
	err := c.call(ctx, http.MethodGet, "/api/pubg/agent/available-tools", team, nil, &out)
	return out, err
}

// CreateTool adds a tool to team.
func (c *Client) CreateTool(ctx context.Context, team string, req types.ToolRequest) error {
	return c.call(ctx, http.MethodPost, "/api/pubg/agent/tool", team, req, nil)
}

// UpdateTool changes a tool description.
func (c *Client) UpdateTool(ctx context.Context, team string, req types.ToolRequest) error {
	return c.call(ctx, http.MethodPatch, "/api/pubg/agent/tool", team, req, nil)
}

// DeleteTool removes a tool from team.
func (c *Client) DeleteTool(ctx context.Context, team, name string) error {
	return c.call(ctx, http.MethodDelete, "/api/pubg/agent/tool/"+url.PathEscape(name), team, nil, nil)
}
