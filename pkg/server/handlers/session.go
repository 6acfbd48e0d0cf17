package handlers

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Peixotim/emotion-api/pkg/orchestrator"
	"github.com/Peixotim/emotion-api/pkg/telemetry/metrics"
)

// SessionHandler serves POST /start-session.
type SessionHandler struct {
	orchestrator *orchestrator.Orchestrator
	collector    *metrics.Collector
	logger       *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(o *orchestrator.Orchestrator, collector *metrics.Collector) *SessionHandler {
	return &SessionHandler{
		orchestrator: o,
		collector:    collector,
		logger:       slog.Default().With("component", "handlers.session"),
	}
}

// StartSession handles POST /start-session. No request body is required;
// the client address is captured from the connection.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
			Code:  "method_not_allowed",
		})
		return
	}

	session, err := h.orchestrator.StartSession(r.Context(), clientAddr(r))
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		writeError(w, r, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordSessionStarted()
	}

	writeJSON(w, http.StatusOK, startSessionResponse{
		SessionUUID: session.ID,
		CreatedAt:   session.CreatedAt.Format(time.RFC3339),
	})
}

// clientAddr extracts the client address, preferring the first
// X-Forwarded-For hop when the service runs behind a proxy.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
