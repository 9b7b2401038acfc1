// Package upstream forwards proxy calls to the backend at API_BASE_URL.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/arcade/internal/config"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/internal/telemetry"
	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

// Request describes one forwarded call.
type Request struct {
	// Method is the HTTP verb sent upstream.
	Method string
	// Resource is the path below the base URL, e.g. "pic-perfect/vote".
	// Dynamic segments must already be escaped.
	Resource string
	// Team is forwarded in the team-name header when non-empty.
	Team string
	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is the upstream status and raw body.
type Response struct {
	Status   int
	Body     []byte
	resource string
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// JSON returns the body as a raw JSON value. An empty or malformed body is ErrDecode.
func (r *Response) JSON() (json.RawMessage, error) {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 || !json.Valid(body) {
		metrics.RecordUpstreamFailure(r.resource, "decode")
		return nil, fmt.Errorf("%s status %d: %w", r.resource, r.Status, ErrDecode)
	}
	return json.RawMessage(body), nil
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	raw, err := r.JSON()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		metrics.RecordUpstreamFailure(r.resource, "decode")
		return fmt.Errorf("%s: %w: %w", r.resource, ErrDecode, err)
	}
	return nil
}

// Client issues forwarded calls. It holds no per-team state.
type Client struct {
	base    config.Upstream
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
}

// New creates a Client reading its base address from base on every call.
func New(base config.Upstream, opts ...Option) *Client {
	c := &Client{
		base: base,
		http: telemetry.InstrumentClient(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("upstream")
	}
	return c
}

// Configured reports whether a base address is currently available.
func (c *Client) Configured() bool {
	return c.base != nil && c.base.BaseURL() != ""
}

// Do forwards req. A non-2xx status is not an error; the caller relays it.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resource := strings.TrimLeft(req.Resource, "/")
	if !c.Configured() {
		metrics.RecordUpstreamFailure(resource, "no_base_url")
		return nil, ErrNoBaseURL
	}
	target := c.base.BaseURL() + "/" + resource

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode %s: %w", ErrTransport, resource, err)
		}
		body = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %w", ErrTransport, resource, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Team != "" {
		httpReq.Header.Set(types.TeamHeader, req.Team)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.RecordUpstreamFailure(resource, "transport")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamFailure(resource, "transport")
		return nil, fmt.Errorf("%w: read %s: %w", ErrTransport, resource, err)
	}

	elapsed := float64(time.Since(start).Nanoseconds()) / 1e6
	metrics.RecordUpstreamRequest(resource, req.Method, strconv.Itoa(resp.StatusCode), elapsed)
	if resp.StatusCode >= http.StatusBadRequest {
		metrics.RecordUpstreamFailure(resource, "status")
	}
	c.log.Debug(ctx, "upstream call",
		logger.String("method", req.Method),
		logger.String("resource", resource),
		logger.Int("status", resp.StatusCode),
		logger.Float64("duration_ms", elapsed),
	)

	return &Response{Status: resp.StatusCode, Body: raw, resource: resource}, nil
}
