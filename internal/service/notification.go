package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studydesk/internal/model"
	"studydesk/internal/repository"

	"github.com/google/uuid"
)

// ErrNotificationNotFound covers both a missing notification and one owned by
// another user; the two cases are deliberately indistinguishable so callers
// cannot probe for other users' notification ids.
var ErrNotificationNotFound = repository.ErrNotificationNotFound

const defaultListLimit = 50

// NotificationLog is the append-only log of user-facing events. The business
// rules for *when* entries fire live with the callers (quota gate, ledger,
// feature services); this service owns the records themselves.
type NotificationLog struct {
	repo   repository.Repository
	logger *slog.Logger
}

func NewNotificationLog(repo repository.Repository, logger *slog.Logger) *NotificationLog {
	return &NotificationLog{
		repo:   repo,
		logger: logger,
	}
}

// Notify appends a notification for the user.
func (n *NotificationLog) Notify(ctx context.Context, userID uuid.UUID, typ model.NotificationType, title, message string) (model.Notification, error) {
	notification := model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now(),
	}
	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return model.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

// TryNotify appends a notification best-effort. A failure is logged and
// swallowed: a broken notification channel must never block quota enforcement
// or a subscription change.
func (n *NotificationLog) TryNotify(ctx context.Context, userID uuid.UUID, typ model.NotificationType, title, message string) {
	if _, err := n.Notify(ctx, userID, typ, title, message); err != nil {
		n.logger.WarnContext(ctx, "Failed to deliver notification", "user_id", userID, "type", typ, "error", err)
	}
}

// MarkRead marks one of the user's notifications as read.
func (n *NotificationLog) MarkRead(ctx context.Context, id, userID uuid.UUID) (model.Notification, error) {
	notification, err := n.repo.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return model.Notification{}, ErrNotificationNotFound
		}
		return model.Notification{}, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return notification, nil
}

// MarkAllRead marks all of the user's unread notifications as read and
// returns how many were affected.
func (n *NotificationLog) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := n.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

// List returns the user's notifications newest first.
func (n *NotificationLog) List(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	notifications, err := n.repo.GetNotificationsByUserID(ctx, userID, limit, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (n *NotificationLog) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := n.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
