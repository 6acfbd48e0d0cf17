package handlers

import (
	"net/http"

	"github.com/Peixotim/emotion-api/pkg/telemetry/health"
)

// HealthHandler serves the liveness and readiness endpoints. GET / returns
// the service banner; GET /health answers liveness probes; GET /ready runs
// the dependency checks.
type HealthHandler struct {
	version string
	checker *health.Checker
}

// NewHealthHandler creates a new health handler. A nil checker makes
// /ready unconditionally ready.
func NewHealthHandler(version string, checker *health.Checker) *HealthHandler {
	return &HealthHandler{
		version: version,
		checker: checker,
	}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
			Code:  "method_not_allowed",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "emotion analysis API is online",
	})
}

// Health handles GET /health. Liveness never consults the dependency
// checks; answering at all means the process is alive.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

// Ready handles GET /ready. A degraded dependency turns readiness into a
// 503 so load balancers stop routing traffic here.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
		})
		return
	}

	status := h.checker.CheckReadiness(r.Context())
	code := http.StatusOK
	if !status.Ready() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
