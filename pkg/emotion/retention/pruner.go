package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/Peixotim/emotion-api/pkg/emotion"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain emotion records.
	// Zero or negative disables pruning; the config layer defaults an
	// unset value to 30 and reserves -1 as the explicit opt-out.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Descriptors like "@daily" are accepted. Example: "0 3 * * *"
	// (daily at 3 AM).
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "@daily",
	}
}

// PurgeObserver receives the outcome of each purge run. Implemented by the
// telemetry collector; a nil observer disables reporting.
type PurgeObserver interface {
	ObservePurge(status string, deleted int64, duration time.Duration)
}

// Pruner enforces the retention window on emotion records.
type Pruner struct {
	storage   emotion.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	observer  PurgeObserver
}

// NewPruner creates a new retention pruner.
func NewPruner(storage emotion.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "emotion.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// SetObserver installs a purge outcome observer. Must be called before Start.
func (p *Pruner) SetObserver(observer PurgeObserver) {
	p.observer = observer
}

// Prune deletes emotion records older than the retention window and returns
// the number deleted. The cutoff is computed at call time as now minus
// RetentionDays. Sessions are never deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	start := time.Now()

	p.logger.Debug("pruning emotion records",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.storage.PurgeOlderThan(ctx, cutoff)
	duration := time.Since(start)
	if err != nil {
		if p.observer != nil {
			p.observer.ObservePurge("error", deleted, duration)
		}
		return deleted, err
	}

	if p.observer != nil {
		p.observer.ObservePurge("success", deleted, duration)
	}

	if deleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Info("emotion record pruning completed",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// TriggerNow runs one purge cycle immediately, outside the schedule. It
// honors the same overlap policy as scheduled runs: if a purge is already
// in progress, it returns ErrPruneInProgress without queuing.
func (p *Pruner) TriggerNow(ctx context.Context) (int64, error) {
	return p.scheduler.TriggerNow(ctx)
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
