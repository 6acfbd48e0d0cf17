package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Peixotim/emotion-api/pkg/emotion"
	"github.com/Peixotim/emotion-api/pkg/emotion/storage"
)

func seedRecords(t *testing.T, s emotion.Storage, sessionID string, ages ...time.Duration) {
	t.Helper()

	ctx := context.Background()
	session := &emotion.Session{ID: sessionID, CreatedAt: time.Now()}
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	scores := emotion.Scores{}
	for _, label := range emotion.Labels {
		scores[label] = 1
	}

	now := time.Now()
	// Oldest first so the monotonic clamp never rewrites timestamps.
	for i := len(ages) - 1; i >= 0; i-- {
		record := &emotion.EmotionRecord{
			SessionID:       sessionID,
			DominantEmotion: emotion.Neutral,
			EmotionScores:   scores,
			CreatedAt:       now.Add(-ages[i]),
		}
		if _, err := s.RecordEmotion(ctx, record); err != nil {
			t.Fatalf("RecordEmotion() error = %v", err)
		}
	}
}

func TestPrunerPrune(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store, "session-prune",
		2*24*time.Hour,
		31*24*time.Hour,
		60*24*time.Hour,
	)

	pruner := NewPruner(store, &Config{RetentionDays: 30, PruneSchedule: "@daily"})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted = %d, want 2", deleted)
	}
	if store.Size() != 1 {
		t.Errorf("Size() after prune = %d, want 1", store.Size())
	}

	// Second run with nothing left to delete.
	deleted, err = pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() second run error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() second run deleted = %d, want 0", deleted)
	}
}

func TestPrunerRetentionDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store, "session-keep", 400*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0, PruneSchedule: "@daily"})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted = %d, want 0 with retention disabled", deleted)
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}

type recordedPurge struct {
	status  string
	deleted int64
}

type fakeObserver struct {
	mu     sync.Mutex
	purges []recordedPurge
}

func (o *fakeObserver) ObservePurge(status string, deleted int64, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.purges = append(o.purges, recordedPurge{status: status, deleted: deleted})
}

func TestPrunerObserver(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store, "session-obs", 45*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 30, PruneSchedule: "@daily"})
	observer := &fakeObserver{}
	pruner.SetObserver(observer)

	if _, err := pruner.Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	store.FailNext = errors.New("db locked")
	if _, err := pruner.Prune(context.Background()); err == nil {
		t.Fatal("Prune() error = nil, want storage failure")
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.purges) != 2 {
		t.Fatalf("observer recorded %d purges, want 2", len(observer.purges))
	}
	if observer.purges[0].status != "success" || observer.purges[0].deleted != 1 {
		t.Errorf("first purge = %+v, want success/1", observer.purges[0])
	}
	if observer.purges[1].status != "error" {
		t.Errorf("second purge status = %q, want error", observer.purges[1].status)
	}
}

// blockingStorage gates PurgeOlderThan on a channel so tests can hold a
// purge open while probing the overlap policy.
type blockingStorage struct {
	*storage.MemoryStorage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.MemoryStorage.PurgeOlderThan(ctx, cutoff)
}

func TestTriggerNowSkipsWhenPurgeInProgress(t *testing.T) {
	store := &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}

	pruner := NewPruner(store, &Config{RetentionDays: 30, PruneSchedule: "@daily"})

	done := make(chan error, 1)
	go func() {
		_, err := pruner.TriggerNow(context.Background())
		done <- err
	}()

	// Wait until the first purge is inside the storage call.
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first purge never reached storage")
	}

	// Overlapping trigger must be skipped, not queued.
	if _, err := pruner.TriggerNow(context.Background()); !errors.Is(err, ErrPruneInProgress) {
		t.Errorf("TriggerNow() overlap error = %v, want ErrPruneInProgress", err)
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Errorf("first TriggerNow() error = %v", err)
	}
}
