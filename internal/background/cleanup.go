package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/formloop/formloop/internal/repositories"
)

// CleanupManager periodically removes consumed access tokens that have aged
// past the configured retention window. A zero or negative retention keeps
// consumed tokens forever for auditing, and the manager stays idle.
type CleanupManager struct {
	tokenRepo *repositories.AccessTokenRepository
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	tokenRepo *repositories.AccessTokenRepository,
	logger *slog.Logger,
	retention time.Duration,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		tokenRepo: tokenRepo,
		logger:    logger,
		retention: retention,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	if cm.retention <= 0 {
		cm.logger.Info("token retention disabled, cleanup manager idle")
		return
	}

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

// runCleanup removes consumed tokens older than the retention window
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cm.logger.Info("starting consumed token cleanup")

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cm.retention)
	rowsDeleted, err := cm.tokenRepo.DeleteUsedBefore(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to cleanup consumed tokens", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("consumed token cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
