package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// MemoryStorage implements the emotion.Storage interface using in-memory maps.
// This implementation is intended for testing only and should not be used in production.
type MemoryStorage struct {
	sessions map[string]*emotion.Session
	records  []*emotion.EmotionRecord
	nextID   int64
	mu       sync.RWMutex

	// FailNext, when set, makes the next mutating call return this error.
	// Used by tests to exercise persistence failure paths.
	FailNext error
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*emotion.Session),
		nextID:   1,
	}
}

func (s *MemoryStorage) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// CreateSession persists a new session in memory.
func (s *MemoryStorage) CreateSession(ctx context.Context, session *emotion.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return emotion.NewStorageError("memory", "create_session", err)
	}

	if _, ok := s.sessions[session.ID]; ok {
		return &emotion.DuplicateSessionError{SessionID: session.ID}
	}

	// Create a copy to avoid mutation
	sessionCopy := *session
	s.sessions[session.ID] = &sessionCopy

	return nil
}

// GetSession retrieves a session by id.
func (s *MemoryStorage) GetSession(ctx context.Context, id string) (*emotion.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, &emotion.SessionNotFoundError{SessionID: id}
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// RecordEmotion persists one classification result in memory.
// It applies the same created_at clamp as the SQLite backend.
func (s *MemoryStorage) RecordEmotion(ctx context.Context, record *emotion.EmotionRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return 0, emotion.NewStorageError("memory", "record_emotion", err)
	}

	if _, ok := s.sessions[record.SessionID]; !ok {
		return 0, &emotion.UnknownSessionError{SessionID: record.SessionID}
	}

	createdAt := record.CreatedAt
	for _, existing := range s.records {
		if existing.SessionID == record.SessionID && createdAt.Before(existing.CreatedAt) {
			createdAt = existing.CreatedAt
		}
	}

	recordCopy := *record
	recordCopy.ID = s.nextID
	recordCopy.CreatedAt = createdAt
	recordCopy.EmotionScores = make(emotion.Scores, len(record.EmotionScores))
	for label, score := range record.EmotionScores {
		recordCopy.EmotionScores[label] = score
	}
	s.nextID++
	s.records = append(s.records, &recordCopy)

	record.ID = recordCopy.ID
	record.CreatedAt = createdAt
	return recordCopy.ID, nil
}

// PurgeOlderThan deletes all records with CreatedAt strictly before cutoff.
func (s *MemoryStorage) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return 0, emotion.NewStorageError("memory", "purge", err)
	}

	var kept []*emotion.EmotionRecord
	var deleted int64
	for _, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept

	return deleted, nil
}

// CountRecords returns the number of records for a session.
func (s *MemoryStorage) CountRecords(ctx context.Context, sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.SessionID == sessionID {
			count++
		}
	}

	return count, nil
}

// ListRecords returns up to limit records for a session, newest first.
func (s *MemoryStorage) ListRecords(ctx context.Context, sessionID string, limit int) ([]*emotion.EmotionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	results := []*emotion.EmotionRecord{}
	for _, record := range s.records {
		if record.SessionID != sessionID {
			continue
		}
		recordCopy := *record
		results = append(results, &recordCopy)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID > results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Ping verifies the backend is usable. The in-memory backend is always
// reachable.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*emotion.Session)
	s.records = nil
	return nil
}

// Size returns the total number of emotion records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
