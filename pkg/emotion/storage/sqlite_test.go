package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

func newTestSQLiteStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "emotion_test.db")

	s, err := NewSQLiteStorage(config)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func testScores(dominant emotion.Label) emotion.Scores {
	scores := emotion.Scores{}
	for _, label := range emotion.Labels {
		scores[label] = 1.0
	}
	scores[dominant] = 90.0
	return scores
}

func TestSQLiteStorage_CreateAndGetSession(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{
		ID:         "11111111-1111-4111-8111-111111111111",
		RemoteAddr: "192.0.2.10",
		CreatedAt:  time.Now(),
	}

	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("GetSession() ID = %q, want %q", got.ID, session.ID)
	}
	if got.RemoteAddr != session.RemoteAddr {
		t.Errorf("GetSession() RemoteAddr = %q, want %q", got.RemoteAddr, session.RemoteAddr)
	}
	if got.CreatedAt.IsZero() {
		t.Error("GetSession() CreatedAt is zero")
	}
}

func TestSQLiteStorage_CreateSessionDuplicate(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{ID: "dup-session", CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	err := s.CreateSession(ctx, session)
	var dupErr *emotion.DuplicateSessionError
	if !errors.As(err, &dupErr) {
		t.Fatalf("CreateSession() error = %v, want DuplicateSessionError", err)
	}
	if dupErr.SessionID != session.ID {
		t.Errorf("DuplicateSessionError.SessionID = %q, want %q", dupErr.SessionID, session.ID)
	}
}

func TestSQLiteStorage_GetSessionNotFound(t *testing.T) {
	s := newTestSQLiteStorage(t)

	_, err := s.GetSession(context.Background(), "missing")
	var notFound *emotion.SessionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("GetSession() error = %v, want SessionNotFoundError", err)
	}
}

func TestSQLiteStorage_RecordEmotion(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{ID: "session-1", CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	record := &emotion.EmotionRecord{
		SessionID:       session.ID,
		DominantEmotion: emotion.Happy,
		EmotionScores:   testScores(emotion.Happy),
		CreatedAt:       time.Now(),
	}

	id, err := s.RecordEmotion(ctx, record)
	if err != nil {
		t.Fatalf("RecordEmotion() error = %v", err)
	}
	if id <= 0 {
		t.Errorf("RecordEmotion() id = %d, want > 0", id)
	}

	records, err := s.ListRecords(ctx, session.ID, 10)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListRecords() returned %d records, want 1", len(records))
	}
	if records[0].DominantEmotion != emotion.Happy {
		t.Errorf("DominantEmotion = %q, want %q", records[0].DominantEmotion, emotion.Happy)
	}
	if len(records[0].EmotionScores) != len(emotion.Labels) {
		t.Errorf("EmotionScores has %d labels, want %d", len(records[0].EmotionScores), len(emotion.Labels))
	}
	if records[0].EmotionScores[emotion.Happy] != 90.0 {
		t.Errorf("EmotionScores[happy] = %v, want 90", records[0].EmotionScores[emotion.Happy])
	}
}

func TestSQLiteStorage_RecordEmotionUnknownSession(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	record := &emotion.EmotionRecord{
		SessionID:       "never-started",
		DominantEmotion: emotion.Neutral,
		EmotionScores:   testScores(emotion.Neutral),
		CreatedAt:       time.Now(),
	}

	_, err := s.RecordEmotion(ctx, record)
	var unknown *emotion.UnknownSessionError
	if !errors.As(err, &unknown) {
		t.Fatalf("RecordEmotion() error = %v, want UnknownSessionError", err)
	}

	count, err := s.CountRecords(ctx, "never-started")
	if err != nil {
		t.Fatalf("CountRecords() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountRecords() = %d, want 0", count)
	}
}

func TestSQLiteStorage_RecordEmotionClampsCreatedAt(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{ID: "session-clamp", CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	now := time.Now().UTC()
	first := &emotion.EmotionRecord{
		SessionID:       session.ID,
		DominantEmotion: emotion.Happy,
		EmotionScores:   testScores(emotion.Happy),
		CreatedAt:       now,
	}
	if _, err := s.RecordEmotion(ctx, first); err != nil {
		t.Fatalf("RecordEmotion() error = %v", err)
	}

	// Second record carries an earlier timestamp, e.g. from a skewed clock.
	second := &emotion.EmotionRecord{
		SessionID:       session.ID,
		DominantEmotion: emotion.Sad,
		EmotionScores:   testScores(emotion.Sad),
		CreatedAt:       now.Add(-1 * time.Hour),
	}
	if _, err := s.RecordEmotion(ctx, second); err != nil {
		t.Fatalf("RecordEmotion() error = %v", err)
	}

	if second.CreatedAt.Before(first.CreatedAt) {
		t.Errorf("second record CreatedAt %v precedes first %v, want clamped",
			second.CreatedAt, first.CreatedAt)
	}

	records, err := s.ListRecords(ctx, session.ID, 10)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	for i := 1; i < len(records); i++ {
		// Newest first: each record must not be older than its successor.
		if records[i-1].CreatedAt.Before(records[i].CreatedAt) {
			t.Errorf("records out of order: %v before %v", records[i-1].CreatedAt, records[i].CreatedAt)
		}
	}
}

func TestSQLiteStorage_PurgeOlderThan(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{ID: "session-purge", CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	now := time.Now().UTC()
	ages := []time.Duration{
		-45 * 24 * time.Hour,
		-31 * 24 * time.Hour,
		-5 * 24 * time.Hour,
		0,
	}
	for _, age := range ages {
		record := &emotion.EmotionRecord{
			SessionID:       session.ID,
			DominantEmotion: emotion.Neutral,
			EmotionScores:   testScores(emotion.Neutral),
			CreatedAt:       now.Add(age),
		}
		if _, err := s.RecordEmotion(ctx, record); err != nil {
			t.Fatalf("RecordEmotion() error = %v", err)
		}
	}

	cutoff := now.Add(-30 * 24 * time.Hour)
	deleted, err := s.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("PurgeOlderThan() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("PurgeOlderThan() deleted = %d, want 2", deleted)
	}

	count, err := s.CountRecords(ctx, session.ID)
	if err != nil {
		t.Fatalf("CountRecords() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountRecords() = %d, want 2", count)
	}

	// Idempotent: re-running with the same cutoff deletes nothing.
	deleted, err = s.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("PurgeOlderThan() second run error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("PurgeOlderThan() second run deleted = %d, want 0", deleted)
	}

	// Session row survives the purge.
	if _, err := s.GetSession(ctx, session.ID); err != nil {
		t.Errorf("GetSession() after purge error = %v", err)
	}
}

func TestSQLiteStorage_ListRecordsLimit(t *testing.T) {
	s := newTestSQLiteStorage(t)
	ctx := context.Background()

	session := &emotion.Session{ID: "session-list", CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		record := &emotion.EmotionRecord{
			SessionID:       session.ID,
			DominantEmotion: emotion.Happy,
			EmotionScores:   testScores(emotion.Happy),
			CreatedAt:       base.Add(time.Duration(i) * time.Second),
		}
		if _, err := s.RecordEmotion(ctx, record); err != nil {
			t.Fatalf("RecordEmotion() error = %v", err)
		}
	}

	records, err := s.ListRecords(ctx, session.ID, 3)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ListRecords() returned %d records, want 3", len(records))
	}
	// Newest first
	if !records[0].CreatedAt.After(records[2].CreatedAt) {
		t.Errorf("ListRecords() not newest first: %v .. %v", records[0].CreatedAt, records[2].CreatedAt)
	}
}
