// Package retention enforces the retention window on stored emotion
// records.
//
// A Pruner deletes records older than the configured number of days
// (default 30). The deletion is delegated to Storage.PurgeOlderThan, which
// removes exactly the records with created_at strictly before the cutoff
// in one atomic operation, so a purge run is idempotent for a fixed cutoff.
//
// A Scheduler runs the pruner on a cron schedule (default "@daily"). Ticks
// that fire while a purge is still running are skipped, never queued, so
// at most one purge cycle executes at any time. The same overlap policy
// applies to manual runs via TriggerNow, which returns ErrPruneInProgress
// instead of waiting.
//
// The scheduler has an explicit lifecycle. Nothing starts at package load
// time; the composition root calls Start and Stop:
//
//	pruner := retention.NewPruner(storage, &retention.Config{
//		RetentionDays: 30,
//		PruneSchedule: "@daily",
//	})
//	if err := pruner.Start(ctx); err != nil {
//		return err
//	}
//	defer pruner.Stop()
//
// A failed purge run is logged and does not stop the scheduler; the next
// tick runs normally.
package retention
