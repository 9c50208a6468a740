package repository

import (
	"context"
	"errors"
	"time"

	"studydesk/internal/model"

	"github.com/google/uuid"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateProviderRef = errors.New("provider reference already used")
)

// Repository defines the contract for the persistent store.
type Repository interface {
	// Subscription operations
	GetActiveSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (model.Subscription, error)
	GetSubscriptionByProviderRef(ctx context.Context, providerRef string) (model.Subscription, error)
	// CreateSubscription inserts the given ACTIVE subscription and, in the
	// same transaction, moves every existing ACTIVE row for that user to
	// CANCELED with the given cancellation time.
	CreateSubscription(ctx context.Context, sub model.Subscription, cancelExistingAt time.Time) error
	UpdateSubscription(ctx context.Context, sub model.Subscription) error
	MarkSubscriptionsExpired(ctx context.Context, now time.Time) (int64, error)

	// Daily usage operations
	GetDailyUsageCount(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)
	// IncrementDailyUsage atomically creates the (userID, day) row with
	// count 1 or increments it by 1, returning the new count.
	IncrementDailyUsage(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)

	// Notification operations
	CreateNotification(ctx context.Context, notification model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error)

	// Plan limit configuration
	ListPlanLimits(ctx context.Context) ([]model.PlanLimit, error)

	HealthCheck(ctx context.Context) error
}
