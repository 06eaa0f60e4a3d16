package background

import (
	"context"
	"log/slog"
	"time"
)

// RetentionStore deletes records older than the retention period
type RetentionStore interface {
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}

// CleanupManager periodically removes login attempts and fingerprint
// records past retention. Retention cleanup runs out-of-band and never
// touches the per-request scoring path.
type CleanupManager struct {
	store         RetentionStore
	logger        *slog.Logger
	interval      time.Duration
	retentionDays int
	stopCh        chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(store RetentionStore, logger *slog.Logger, interval time.Duration, retentionDays int) *CleanupManager {
	return &CleanupManager{
		store:         store,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.store.CleanupOlderThan(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("failed to cleanup expired records", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("retention cleanup completed",
			slog.Int64("rows_deleted", rowsDeleted),
			slog.Int("retention_days", cm.retentionDays))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
