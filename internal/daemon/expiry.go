package daemon

import (
	"context"
	"log/slog"
	"time"

	"studydesk/internal/repository"
)

// SubscriptionExpiryTask periodically flips ACTIVE subscriptions whose paid
// period has lapsed to EXPIRED. Plan resolution already ignores lapsed rows,
// so this sweep only makes the stored state converge; it changes no
// observable quota behavior.
func SubscriptionExpiryTask(repo repository.Repository, interval time.Duration, logger *slog.Logger) DaemonFunc {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("Daemon shutting down", "daemon", name)
				return nil
			case <-ticker.C:
				count, err := repo.MarkSubscriptionsExpired(ctx, time.Now())
				if err != nil {
					logger.Error("Failed to expire subscriptions", "error", err)
					continue
				}
				if count > 0 {
					logger.Info("Expired lapsed subscriptions", "count", count)
				}
			}
		}
	}
}
