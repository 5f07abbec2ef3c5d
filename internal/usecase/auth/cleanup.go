package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"identity-service/internal/logger"
)

// BlacklistCleaner deletes blacklist rows whose tokens have expired and
// can no longer be replayed anyway.
type BlacklistCleaner interface {
	DeleteExpired(ctx context.Context) error
}

// StartBlacklistCleanupJob periodically garbage-collects the revocation
// blacklist. It blocks until the context is cancelled.
func StartBlacklistCleanupJob(ctx context.Context, cleaner BlacklistCleaner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Blacklist cleanup job started",
		zap.Duration("interval", interval),
	)

	cleanup(ctx, cleaner)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Blacklist cleanup job stopped")
			return
		case <-ticker.C:
			cleanup(ctx, cleaner)
		}
	}
}

func cleanup(ctx context.Context, cleaner BlacklistCleaner) {
	if err := cleaner.DeleteExpired(ctx); err != nil {
		logger.Error("Failed to delete expired blacklist entries", zap.Error(err))
		return
	}

	logger.Debug("Expired blacklist entries cleaned up")
}
