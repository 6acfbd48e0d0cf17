package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Peixotim/emotion-api/pkg/emotion"
	"github.com/Peixotim/emotion-api/pkg/emotion/storage"
)

// fakeAnalyzer returns a canned result or error without touching storage.
type fakeAnalyzer struct {
	result *emotion.AnalysisResult
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, sessionID, payload string) (*emotion.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func happyResult() *emotion.AnalysisResult {
	scores := emotion.Scores{}
	for _, label := range emotion.Labels {
		scores[label] = 1
	}
	scores[emotion.Happy] = 90
	return &emotion.AnalysisResult{
		DominantEmotion: emotion.Happy,
		Emotions:        scores,
		ClassifiedAt:    time.Now().UTC(),
	}
}

func TestStartSession(t *testing.T) {
	store := storage.NewMemoryStorage()
	o := New(store, &fakeAnalyzer{})

	session, err := o.StartSession(context.Background(), "198.51.100.4")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if _, err := uuid.Parse(session.ID); err != nil {
		t.Errorf("session id %q is not a UUID: %v", session.ID, err)
	}
	if session.RemoteAddr != "198.51.100.4" {
		t.Errorf("RemoteAddr = %q, want 198.51.100.4", session.RemoteAddr)
	}

	// The session is durably visible through storage.
	if _, err := store.GetSession(context.Background(), session.ID); err != nil {
		t.Errorf("GetSession() after start error = %v", err)
	}

	// Distinct sessions get distinct ids.
	second, err := o.StartSession(context.Background(), "198.51.100.4")
	if err != nil {
		t.Fatalf("StartSession() second call error = %v", err)
	}
	if second.ID == session.ID {
		t.Error("two sessions share the same id")
	}
}

func TestStartSessionStorageFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	store.FailNext = fmt.Errorf("disk full")
	o := New(store, &fakeAnalyzer{})

	_, err := o.StartSession(context.Background(), "")
	var storageErr *emotion.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("StartSession() error = %v, want StorageError", err)
	}
}

func TestSubmitFrame(t *testing.T) {
	store := storage.NewMemoryStorage()
	analyzer := &fakeAnalyzer{result: happyResult()}
	o := New(store, analyzer)

	session, err := o.StartSession(context.Background(), "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	submit, err := o.SubmitFrame(context.Background(), session.ID, "payload")
	if err != nil {
		t.Fatalf("SubmitFrame() error = %v", err)
	}
	if !submit.Persisted {
		t.Error("Persisted = false, want true")
	}
	if submit.RecordID <= 0 {
		t.Errorf("RecordID = %d, want > 0", submit.RecordID)
	}
	if submit.Result.DominantEmotion != emotion.Happy {
		t.Errorf("DominantEmotion = %q, want happy", submit.Result.DominantEmotion)
	}

	count, err := store.CountRecords(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("CountRecords() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountRecords() = %d, want 1", count)
	}
}

func TestSubmitFrameMalformedSessionID(t *testing.T) {
	store := storage.NewMemoryStorage()
	analyzer := &fakeAnalyzer{result: happyResult()}
	o := New(store, analyzer)

	_, err := o.SubmitFrame(context.Background(), "not-a-uuid", "payload")
	var invalid *emotion.InvalidPayloadError
	if !errors.As(err, &invalid) {
		t.Fatalf("SubmitFrame() error = %v, want InvalidPayloadError", err)
	}
	if analyzer.calls != 0 {
		t.Errorf("analyzer called %d times for malformed id, want 0", analyzer.calls)
	}
}

func TestSubmitFrameAnalysisFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	analyzer := &fakeAnalyzer{err: emotion.NewAnalysisUnavailableError(true, fmt.Errorf("down"))}
	o := New(store, analyzer)

	session, err := o.StartSession(context.Background(), "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = o.SubmitFrame(context.Background(), session.ID, "payload")
	var unavailable *emotion.AnalysisUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("SubmitFrame() error = %v, want AnalysisUnavailableError", err)
	}

	count, _ := store.CountRecords(context.Background(), session.ID)
	if count != 0 {
		t.Errorf("CountRecords() = %d after failed analysis, want 0", count)
	}
}

func TestSubmitFramePersistenceFailure(t *testing.T) {
	store := storage.NewMemoryStorage()
	analyzer := &fakeAnalyzer{result: happyResult()}
	o := New(store, analyzer)

	session, err := o.StartSession(context.Background(), "")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	store.FailNext = fmt.Errorf("db locked")

	submit, err := o.SubmitFrame(context.Background(), session.ID, "payload")
	if err != nil {
		t.Fatalf("SubmitFrame() error = %v, want degraded success", err)
	}
	if submit.Persisted {
		t.Error("Persisted = true, want false")
	}
	if submit.PersistErr == nil {
		t.Error("PersistErr = nil, want storage failure")
	}
	if submit.Result == nil || submit.Result.DominantEmotion != emotion.Happy {
		t.Error("degraded submit lost the classification result")
	}
}
