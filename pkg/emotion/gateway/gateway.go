package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	// Raster formats accepted for frame payloads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Peixotim/emotion-api/pkg/classifier"
	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// ClassifierObserver receives the latency of each classifier call.
// Implemented by the telemetry collector; a nil observer disables reporting.
type ClassifierObserver interface {
	ObserveClassifierLatency(d time.Duration)
}

// Gateway turns a raw frame payload into a normalized analysis result.
// It validates the payload, checks the session exists, calls the external
// classifier and projects the prediction onto the canonical label set.
// It has no persistence side effects; the orchestrator records results.
type Gateway struct {
	storage    emotion.Storage
	classifier classifier.Classifier
	logger     *slog.Logger
	observer   ClassifierObserver
}

// New creates a new analysis gateway.
func New(storage emotion.Storage, classifier classifier.Classifier) *Gateway {
	return &Gateway{
		storage:    storage,
		classifier: classifier,
		logger:     slog.Default().With("component", "emotion.gateway"),
	}
}

// SetObserver installs a classifier latency observer.
func (g *Gateway) SetObserver(observer ClassifierObserver) {
	g.observer = observer
}

// Analyze classifies one frame for an existing session.
//
// The payload is a base64 string, optionally with a data-URI prefix
// ("data:image/png;base64,..."). It must decode to a raster image.
// Failures map onto the domain error types: InvalidPayloadError for bad
// input, UnknownSessionError for a session that was never started,
// AnalysisUnavailableError for classifier faults.
func (g *Gateway) Analyze(ctx context.Context, sessionID, payload string) (*emotion.AnalysisResult, error) {
	frame, err := decodeFrame(payload)
	if err != nil {
		return nil, err
	}

	if _, err := g.storage.GetSession(ctx, sessionID); err != nil {
		var notFound *emotion.SessionNotFoundError
		if errors.As(err, &notFound) {
			return nil, &emotion.UnknownSessionError{SessionID: sessionID}
		}
		return nil, err
	}

	start := time.Now()
	prediction, err := g.classifier.Classify(ctx, frame)
	if g.observer != nil {
		g.observer.ObserveClassifierLatency(time.Since(start))
	}
	if err != nil {
		return nil, mapClassifierError(err)
	}

	scores, err := normalizeScores(prediction.Emotions)
	if err != nil {
		return nil, err
	}

	result := &emotion.AnalysisResult{
		// The dominant label is always recomputed from the normalized
		// scores; the classifier's own claim is not trusted.
		DominantEmotion: scores.Dominant(),
		Emotions:        scores,
		ClassifiedAt:    time.Now(),
	}

	g.logger.Debug("frame analyzed",
		"session_id", sessionID,
		"dominant_emotion", result.DominantEmotion,
	)

	return result, nil
}

// decodeFrame strips an optional data-URI prefix, base64-decodes the
// payload and verifies the bytes form a raster image.
func decodeFrame(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, emotion.NewInvalidPayloadError("empty frame payload", nil)
	}

	// Browsers send canvas captures as data URIs; keep only the data part.
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, emotion.NewInvalidPayloadError("malformed data URI", nil)
		}
		payload = payload[idx+1:]
	}

	frame, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, emotion.NewInvalidPayloadError("payload is not valid base64", err)
	}
	if len(frame) == 0 {
		return nil, emotion.NewInvalidPayloadError("empty frame payload", nil)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(frame)); err != nil {
		return nil, emotion.NewInvalidPayloadError("payload does not decode to an image", err)
	}

	return frame, nil
}

// normalizeScores projects classifier output onto the canonical label set.
// Labels outside the set are dropped, absent labels get a zero score, and a
// negative score is treated as a classifier contract violation.
func normalizeScores(raw map[string]float64) (emotion.Scores, error) {
	scores := make(emotion.Scores, len(emotion.Labels))
	for _, label := range emotion.Labels {
		scores[label] = 0
	}

	for name, score := range raw {
		label := emotion.Label(strings.ToLower(name))
		if !emotion.IsValidLabel(label) {
			continue
		}
		if score < 0 {
			return nil, emotion.NewAnalysisUnavailableError(false,
				fmt.Errorf("classifier returned negative score %v for label %q", score, label))
		}
		scores[label] = score
	}

	return scores, nil
}

// mapClassifierError converts classifier transport errors into the domain
// error taxonomy.
func mapClassifierError(err error) error {
	var unavailable *classifier.UnavailableError
	if errors.As(err, &unavailable) {
		return emotion.NewAnalysisUnavailableError(unavailable.Timeout, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return emotion.NewAnalysisUnavailableError(errors.Is(err, context.DeadlineExceeded), err)
	}
	// Rejections and malformed responses are classifier-side faults too;
	// nothing about the session or payload can be fixed by the client.
	return emotion.NewAnalysisUnavailableError(false, err)
}
