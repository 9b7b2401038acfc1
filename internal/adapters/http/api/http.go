// Package api implements the edge proxy: one handler per backend endpoint,
// each validating identity and body before forwarding to API_BASE_URL.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/arcade/internal/domain/types"
	"github.com/okian/arcade/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps inbound request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.fwd.maxBody = n
		}
	}
}

// WithLogger sets the logger used by every handler.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.fwd.log = l
		}
	}
}

// Server wires HTTP routes for the proxy API.
type Server struct {
	fwd           *forwarder
	healthHandler *HealthHandler
	picPerfect    *PicPerfectHandler
	agent         *AgentHandler
}

// NewServer creates the proxy with all handlers sharing one forwarder.
func NewServer(up Forwarder, serviceName string, opts ...Option) *Server {
	s := &Server{
		fwd:           &forwarder{up: up, maxBody: defaultMaxBodyBytes},
		healthHandler: NewHealthHandler(serviceName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fwd.log == nil {
		s.fwd.log = logger.Named("proxy")
	}
	s.picPerfect = newPicPerfectHandler(s.fwd)
	s.agent = newAgentHandler(s.fwd)
	return s
}

// Register attaches all proxy routes plus /healthz and /metrics.
func (s *Server) Register(r chi.Router) {
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
	})

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)

	r.Route("/api/pic-perfect", func(r chi.Router) {
		r.Get("/leaderboard", MetricsMiddleware(s.picPerfect.HandleLeaderboard, "leaderboard"))
		r.Get("/status", MetricsMiddleware(s.picPerfect.HandleStatus, "status"))
		r.Post("/submit", MetricsMiddleware(s.picPerfect.HandleSubmit, "submit"))
		r.Get("/team-status", MetricsMiddleware(s.picPerfect.HandleTeamStatus, "team_status"))
		r.Post("/vote", MetricsMiddleware(s.picPerfect.HandleVote, "vote"))
		r.Get("/voting-pool", MetricsMiddleware(s.picPerfect.HandleVotingPool, "voting_pool"))
	})

	r.Route("/api/pubg/agent", func(r chi.Router) {
		r.Get("/available-tools", MetricsMiddleware(s.agent.HandleAvailableTools, "available_tools"))
		r.Get("/chat", MetricsMiddleware(s.agent.HandleChatHistory, "chat_history"))
		r.Post("/chat", MetricsMiddleware(s.agent.HandleChatSend, "chat_send"))
		r.Get("/state", MetricsMiddleware(s.agent.HandleGetState, "get_state"))
		r.Patch("/state", MetricsMiddleware(s.agent.HandlePatchState, "patch_state"))
		r.Get("/tool", MetricsMiddleware(s.agent.HandleListTools, "list_tools"))
		r.Post("/tool", MetricsMiddleware(s.agent.HandleCreateTool, "create_tool"))
		r.Patch("/tool", MetricsMiddleware(s.agent.HandleUpdateTool, "update_tool"))
		r.Delete("/tool/{name}", MetricsMiddleware(s.agent.HandleDeleteTool, "delete_tool"))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	writeJSON(w, status, types.ErrorBody{Error: msg, Details: details})
}
