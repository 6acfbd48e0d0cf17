package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrPruneInProgress is returned by TriggerNow when a purge cycle is
// already running. Overlapping runs are skipped, never queued.
var ErrPruneInProgress = errors.New("retention: prune already in progress")

// Scheduler manages automatic retention pruning on a schedule.
// It runs the pruner at scheduled intervals using cron syntax. A tick that
// fires while the previous purge is still running is skipped.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	pruneMu sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a new retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	logger := slog.Default().With("component", "emotion.retention.scheduler")
	return &Scheduler{
		pruner: pruner,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger: logger,
	}
}

// Start begins the scheduled pruning based on the cron expression.
// The cron expression is read from pruner.config.PruneSchedule.
//
// Common cron expressions:
//   - "@daily"       - Daily at midnight
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//
// If PruneSchedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pruner.config.PruneSchedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	// Validate cron expression
	_, err := cron.ParseStandard(s.pruner.config.PruneSchedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w",
			s.pruner.config.PruneSchedule, err)
	}

	// Add cron job
	_, err = s.cron.AddFunc(s.pruner.config.PruneSchedule, func() {
		if _, err := s.runPruning(ctx); err != nil && !errors.Is(err, ErrPruneInProgress) {
			s.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	// Start cron scheduler
	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.pruner.config.PruneSchedule,
		"retention_days", s.pruner.config.RetentionDays,
	)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runPruning executes a pruning cycle unless one is already in progress.
// The pruneMu try-lock covers both scheduled ticks and manual triggers, so
// a manual purge and a scheduled one can never run concurrently either.
func (s *Scheduler) runPruning(ctx context.Context) (int64, error) {
	if !s.pruneMu.TryLock() {
		s.logger.Warn("purge still in progress, skipping this run")
		return 0, ErrPruneInProgress
	}
	defer s.pruneMu.Unlock()

	s.logger.Info("starting scheduled emotion record pruning")

	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		return deleted, err
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed",
			"deleted_count", deleted,
		)
	} else {
		s.logger.Debug("scheduled pruning completed, no records deleted")
	}

	return deleted, nil
}

// TriggerNow runs one pruning cycle immediately, honoring the overlap policy.
func (s *Scheduler) TriggerNow(ctx context.Context) (int64, error) {
	return s.runPruning(ctx)
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled pruning time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
