package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studydesk/internal/database"
	"studydesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *database.Database
}

func NewPostgresRepository(db *database.Database) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const subscriptionColumns = `id, user_id, plan, status, started_at, ends_at, canceled_at, provider, provider_ref, created_at, updated_at`

func scanSubscription(row pgx.Row) (model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Plan, &sub.Status, &sub.StartedAt,
		&sub.EndsAt, &sub.CanceledAt, &sub.Provider, &sub.ProviderRef, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}

func (r *PostgresRepository) GetActiveSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (model.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 AND status = 'ACTIVE'`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{}, ErrSubscriptionNotFound
		}
		return model.Subscription{}, err
	}
	return sub, nil
}

func (r *PostgresRepository) GetSubscriptionByProviderRef(ctx context.Context, providerRef string) (model.Subscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_ref = $1`, providerRef)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscription{}, ErrSubscriptionNotFound
		}
		return model.Subscription{}, err
	}
	return sub, nil
}

// CreateSubscription cancels any ACTIVE rows for the user and inserts the new
// ACTIVE row as a single transaction, so a reader never observes zero or two
// ACTIVE subscriptions for one user.
func (r *PostgresRepository) CreateSubscription(ctx context.Context, sub model.Subscription, cancelExistingAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE subscriptions SET status = 'CANCELED', canceled_at = $1, updated_at = $1 WHERE user_id = $2 AND status = 'ACTIVE'`,
		cancelExistingAt, sub.UserID); err != nil {
		return fmt.Errorf("failed to cancel existing subscriptions: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.UserID, sub.Plan, sub.Status, sub.StartedAt, sub.EndsAt, sub.CanceledAt,
		sub.Provider, sub.ProviderRef, sub.CreatedAt, sub.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateProviderRef
		}
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) UpdateSubscription(ctx context.Context, sub model.Subscription) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET plan = $1, status = $2, ends_at = $3, canceled_at = $4, updated_at = $5 WHERE id = $6`,
		sub.Plan, sub.Status, sub.EndsAt, sub.CanceledAt, sub.UpdatedAt, sub.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkSubscriptionsExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE subscriptions SET status = 'EXPIRED', updated_at = $1 WHERE status = 'ACTIVE' AND ends_at IS NOT NULL AND ends_at < $1`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) GetDailyUsageCount(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count FROM daily_usage WHERE user_id = $1 AND day = $2`, userID, day).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

// IncrementDailyUsage relies on the database upsert so concurrent increments
// for the same (user, day) never lose an update.
func (r *PostgresRepository) IncrementDailyUsage(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`INSERT INTO daily_usage (user_id, day, count) VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, day) DO UPDATE SET count = daily_usage.count + 1
		 RETURNING count`,
		userID, day).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateNotification(ctx context.Context, notification model.Notification) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, read, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		notification.ID, notification.UserID, notification.Type, notification.Title,
		notification.Message, notification.Read, notification.CreatedAt)
	return err
}

func (r *PostgresRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, user_id, type, title, message, read, created_at FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead scopes the update by user so a miss on id and a miss
// on ownership are indistinguishable to the caller.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) (model.Notification, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, type, title, message, read, created_at`,
		id, userID)
	var n model.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Notification{}, ErrNotificationNotFound
		}
		return model.Notification{}, err
	}
	return n, nil
}

func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListPlanLimits(ctx context.Context) ([]model.PlanLimit, error) {
	rows, err := r.db.Query(ctx, `SELECT plan, daily_ceiling FROM plan_limits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var limits []model.PlanLimit
	for rows.Next() {
		var limit model.PlanLimit
		if err := rows.Scan(&limit.Plan, &limit.DailyCeiling); err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, rows.Err()
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	return r.db.Ping(ctx)
}
