package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// Analyzer produces a normalized analysis result for one frame.
// Implemented by the gateway package.
type Analyzer interface {
	Analyze(ctx context.Context, sessionID, payload string) (*emotion.AnalysisResult, error)
}

// SubmitResult is the outcome of one frame submission. Persisted is false
// when classification succeeded but the record could not be stored; the
// result is still usable and PersistErr carries the storage failure.
type SubmitResult struct {
	Result     *emotion.AnalysisResult
	RecordID   int64
	Persisted  bool
	PersistErr error
}

// Orchestrator sequences the two service operations: starting a session
// and submitting a frame for analysis.
type Orchestrator struct {
	storage  emotion.Storage
	analyzer Analyzer
	logger   *slog.Logger
}

// New creates a new request orchestrator.
func New(storage emotion.Storage, analyzer Analyzer) *Orchestrator {
	return &Orchestrator{
		storage:  storage,
		analyzer: analyzer,
		logger:   slog.Default().With("component", "orchestrator"),
	}
}

// StartSession generates a fresh session id and persists the session.
// If persistence fails the id is discarded; an id is never handed to a
// client unless its session row exists.
func (o *Orchestrator) StartSession(ctx context.Context, remoteAddr string) (*emotion.Session, error) {
	session := &emotion.Session{
		ID:         uuid.New().String(),
		RemoteAddr: remoteAddr,
		CreatedAt:  time.Now().UTC(),
	}

	if err := o.storage.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	o.logger.Info("session started",
		"session_id", session.ID,
		"remote_addr", session.RemoteAddr,
	)

	return session, nil
}

// SubmitFrame analyzes one frame for an existing session and records the
// result. A malformed session id fails before any classifier work. When
// classification succeeds but the record cannot be stored, the result is
// returned with Persisted=false rather than discarded.
func (o *Orchestrator) SubmitFrame(ctx context.Context, sessionID, payload string) (*SubmitResult, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, emotion.NewInvalidPayloadError("malformed session id", err)
	}

	result, err := o.analyzer.Analyze(ctx, sessionID, payload)
	if err != nil {
		return nil, err
	}

	record := &emotion.EmotionRecord{
		SessionID:       sessionID,
		DominantEmotion: result.DominantEmotion,
		EmotionScores:   result.Emotions,
		CreatedAt:       result.ClassifiedAt,
	}

	id, err := o.storage.RecordEmotion(ctx, record)
	if err != nil {
		// A session deleted between analysis and insert is a hard error;
		// anything else degrades to an unpersisted result.
		var unknown *emotion.UnknownSessionError
		if errors.As(err, &unknown) {
			return nil, err
		}

		o.logger.Error("classification result not persisted",
			"session_id", sessionID,
			"error", err,
		)
		return &SubmitResult{
			Result:     result,
			Persisted:  false,
			PersistErr: err,
		}, nil
	}

	return &SubmitResult{
		Result:    result,
		RecordID:  id,
		Persisted: true,
	}, nil
}
