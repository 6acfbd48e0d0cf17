package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Peixotim/emotion-api/pkg/emotion"
	"github.com/Peixotim/emotion-api/pkg/orchestrator"
	"github.com/Peixotim/emotion-api/pkg/telemetry/metrics"
)

// AnalyzeHandler serves POST /analyze-emotion.
type AnalyzeHandler struct {
	orchestrator *orchestrator.Orchestrator
	collector    *metrics.Collector
	logger       *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(o *orchestrator.Orchestrator, collector *metrics.Collector) *AnalyzeHandler {
	return &AnalyzeHandler{
		orchestrator: o,
		collector:    collector,
		logger:       slog.Default().With("component", "handlers.analyze"),
	}
}

// Analyze handles POST /analyze-emotion. The request carries a session
// uuid and a base64 frame; the response carries the full seven-label score
// distribution and the dominant emotion. When classification succeeded but
// the record could not be stored, the response still carries the result
// plus a "result_not_persisted" warning.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
			Code:  "method_not_allowed",
		})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordOutcome("invalid_payload", "")
		writeError(w, r, emotion.NewInvalidPayloadError("request body is not valid JSON", err))
		return
	}

	submit, err := h.orchestrator.SubmitFrame(r.Context(), req.SessionUUID, req.ImageBase64)
	if err != nil {
		h.logger.Debug("frame analysis failed",
			"session_uuid", req.SessionUUID,
			"error", err,
		)
		h.recordOutcome(outcomeOf(err), "")
		writeError(w, r, err)
		return
	}

	resp := analyzeResponse{
		DominantEmotion: string(submit.Result.DominantEmotion),
		Emotions:        scoresToWire(submit.Result.Emotions),
	}

	if submit.Persisted {
		h.recordOutcome("success", string(submit.Result.DominantEmotion))
	} else {
		h.recordOutcome("persist_failed", string(submit.Result.DominantEmotion))
		resp.Warning = "result_not_persisted"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AnalyzeHandler) recordOutcome(outcome, label string) {
	if h.collector != nil {
		h.collector.RecordAnalysis(outcome, label)
	}
}

// outcomeOf maps an error to the analyses_total outcome label.
func outcomeOf(err error) string {
	var (
		invalid     *emotion.InvalidPayloadError
		unknown     *emotion.UnknownSessionError
		unavailable *emotion.AnalysisUnavailableError
	)
	switch {
	case errors.As(err, &invalid):
		return "invalid_payload"
	case errors.As(err, &unknown):
		return "unknown_session"
	case errors.As(err, &unavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// scoresToWire converts the typed score map to the wire representation.
func scoresToWire(scores emotion.Scores) map[string]float64 {
	wire := make(map[string]float64, len(scores))
	for label, score := range scores {
		wire[string(label)] = score
	}
	return wire
}
