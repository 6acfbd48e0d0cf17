package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// startSessionResponse is the body returned by POST /start-session.
type startSessionResponse struct {
	SessionUUID string `json:"session_uuid"`
	CreatedAt   string `json:"created_at"`
}

// analyzeRequest is the body accepted by POST /analyze-emotion.
type analyzeRequest struct {
	SessionUUID string `json:"session_uuid"`
	ImageBase64 string `json:"image_base64"`
}

// analyzeResponse is the body returned by POST /analyze-emotion. Warning
// is set to "result_not_persisted" when classification succeeded but the
// record could not be stored.
type analyzeResponse struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotions        map[string]float64 `json:"emotions"`
	Warning         string             `json:"warning,omitempty"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a domain error onto an HTTP status and error code.
//
// Mapping:
//   - InvalidPayloadError        -> 400 invalid_payload
//   - UnknownSessionError        -> 404 unknown_session
//   - SessionNotFoundError       -> 404 unknown_session
//   - AnalysisUnavailableError   -> 503 analysis_unavailable
//   - StorageError               -> 500 storage_error
//   - anything else              -> 500 internal_error
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid     *emotion.InvalidPayloadError
		unknown     *emotion.UnknownSessionError
		notFound    *emotion.SessionNotFoundError
		unavailable *emotion.AnalysisUnavailableError
		storageErr  *emotion.StorageError
	)

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: invalid.Error(),
			Code:  "invalid_payload",
		})
	case errors.As(err, &unknown):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: unknown.Error(),
			Code:  "unknown_session",
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: notFound.Error(),
			Code:  "unknown_session",
		})
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "emotion analysis is temporarily unavailable",
			Code:  "analysis_unavailable",
		})
	case errors.As(err, &storageErr):
		slog.ErrorContext(r.Context(), "storage failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "storage unavailable",
			Code:  "storage_error",
		})
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  "internal_error",
		})
	}
}
