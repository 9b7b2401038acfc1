package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/arcade/internal/adapters/upstream"
	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
	"github.com/okian/arcade/pkg/metrics"
)

// Forwarder is the upstream surface the proxy needs.
type Forwarder interface {
	Configured() bool
	Do(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

// route describes one proxied endpoint.
type route struct {
	// endpoint labels logs and metrics.
	endpoint string
	method   string
	// resource is the upstream path; resourceFn overrides it per request.
	resource   string
	resourceFn func(r *http.Request) string
	teamScoped bool
	schema     bodySchema
	// fallback is relayed when an upstream error carries no message.
	fallback string
	// status replaces the upstream success status when non-zero.
	status int
	// noContent answers success with an empty body, without reading upstream's.
	noContent bool
}

// forwarder runs the shared validate, forward, relay sequence.
type forwarder struct {
	up      Forwarder
	maxBody int64
	log     logger.Logger
}

func (f *forwarder) serve(w http.ResponseWriter, r *http.Request, rt route) {
	op := "api." + rt.endpoint
	ctx := r.Context()

	var team string
	if rt.teamScoped {
		team = strings.TrimSpace(r.Header.Get(types.TeamHeader))
		if team == "" {
			f.reject(ctx, w, rt, "missing_team", NewKind(op, ErrMissingTeam), nil)
			return
		}
	}

	var payload any
	if rt.schema != nil {
		raw, err := f.readBody(w, r)
		switch {
		case errors.As(err, new(*http.MaxBytesError)):
			f.reject(ctx, w, rt, "too_large", WrapKind(op, ErrInvalidBody, err), []string{"body: exceeds size limit"})
			return
		case err != nil:
			f.fail(ctx, w, rt, team, WrapKind(op, ErrTransport, err))
			return
		}
		var details []string
		payload, details = rt.schema(raw)
		if len(details) > 0 {
			f.reject(ctx, w, rt, "invalid_body", NewKind(op, ErrInvalidBody), details)
			return
		}
	}

	if !f.up.Configured() {
		f.missingUpstream(ctx, w, rt, op)
		return
	}

	resource := rt.resource
	if rt.resourceFn != nil {
		resource = rt.resourceFn(r)
	}
	resp, err := f.up.Do(ctx, upstream.Request{
		Method:   rt.method,
		Resource: resource,
		Team:     team,
		Body:     payload,
	})
	switch {
	case errors.Is(err, upstream.ErrNoBaseURL):
		f.missingUpstream(ctx, w, rt, op)
		return
	case err != nil:
		f.fail(ctx, w, rt, team, WrapKind(op, ErrTransport, err))
		return
	}

	if !resp.OK() {
		raw, err := resp.JSON()
		if err != nil {
			f.fail(ctx, w, rt, team, WrapKind(op, ErrTransport, err))
			return
		}
		msg := extractMessage(raw, rt.fallback)
		f.log.Error(ctx, "upstream error relayed",
			logger.String("endpoint", rt.endpoint),
			logger.String("team", team),
			logger.Int("status", resp.Status),
			logger.Error(WrapKind(op, ErrUpstream, errors.New(msg))),
		)
		writeError(w, resp.Status, msg, nil)
		return
	}

	status := resp.Status
	if rt.status != 0 {
		status = rt.status
	}
	if rt.noContent {
		w.WriteHeader(status)
		return
	}
	raw, err := resp.JSON()
	if err != nil {
		f.fail(ctx, w, rt, team, WrapKind(op, ErrTransport, err))
		return
	}
	writeRaw(w, status, raw)
}

func (f *forwarder) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	body := http.MaxBytesReader(w, r.Body, f.maxBody)
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid JSON")
	}
	return raw, nil
}

// reject answers a client input problem with 400. No upstream call is made.
func (f *forwarder) reject(ctx context.Context, w http.ResponseWriter, rt route, reason string, err error, details []string) {
	metrics.RecordValidationRejection(rt.endpoint, reason)
	f.log.Debug(ctx, "request rejected",
		logger.String("endpoint", rt.endpoint),
		logger.String("reason", reason),
		logger.Error(err),
	)
	msg := ErrInvalidBody.Error()
	if errors.Is(err, ErrMissingTeam) {
		msg = ErrMissingTeam.Error()
	}
	writeError(w, http.StatusBadRequest, msg, details)
}

func (f *forwarder) missingUpstream(ctx context.Context, w http.ResponseWriter, rt route, op string) {
	f.log.Error(ctx, "upstream not configured",
		logger.String("endpoint", rt.endpoint),
		logger.Error(NewKind(op, ErrMissingUpstream)),
	)
	writeError(w, http.StatusInternalServerError, ErrMissingUpstream.Error(), nil)
}

// fail collapses transport and parse problems into a generic 500. The detail
// is logged, never returned.
func (f *forwarder) fail(ctx context.Context, w http.ResponseWriter, rt route, team string, err error) {
	f.log.Error(ctx, "proxy request failed",
		logger.String("endpoint", rt.endpoint),
		logger.String("team", team),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, ErrTransport.Error(), nil)
}

// extractMessage picks message, error or detail from an upstream error body.
func extractMessage(raw json.RawMessage, fallback string) string {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return fallback
	}
	for _, key := range []string{"message", "error", "detail"} {
		var s string
		if v, ok := obj[key]; ok && json.Unmarshal(v, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}
