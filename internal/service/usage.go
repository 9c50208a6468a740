package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"studydesk/internal/repository"

	"github.com/google/uuid"
)

// UsageCounter owns the per-user-per-day AI call counter. Every read goes to
// the store; nothing is cached in process, so a quota check can never run
// against stale state.
type UsageCounter struct {
	repo   repository.Repository
	logger *slog.Logger
}

func NewUsageCounter(repo repository.Repository, logger *slog.Logger) *UsageCounter {
	return &UsageCounter{
		repo:   repo,
		logger: logger,
	}
}

// Today returns the current date truncated to midnight in the server's
// timezone. All daily counters share this single reference zone; users in
// other zones see the day roll over at the server's midnight.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CountFor returns the user's AI call count for the given day, 0 when no row
// exists.
func (u *UsageCounter) CountFor(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	count, err := u.repo.GetDailyUsageCount(ctx, userID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to read daily usage: %w", err)
	}
	return count, nil
}

// IncrementFor records one AI call for the user on the given day and returns
// the new count. The increment is atomic at the storage layer.
func (u *UsageCounter) IncrementFor(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	count, err := u.repo.IncrementDailyUsage(ctx, userID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to increment daily usage: %w", err)
	}
	return count, nil
}
