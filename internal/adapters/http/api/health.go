package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/arcade/pkg/metrics"
)

// HealthHandler serves liveness and metrics.
type HealthHandler struct {
	service string
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service string) *HealthHandler {
	if service == "" {
		service = "arcade"
	}
	return &HealthHandler{
		service: service,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleHealth handles GET /healthz. It never calls upstream.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: h.service})
}

// HandleMetrics handles GET /metrics from the private registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
