package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"studydesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository is a testify mock of repository.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetActiveSubscriptionByUserID(ctx context.Context, userID uuid.UUID) (model.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Subscription), args.Error(1)
}

func (m *MockRepository) GetSubscriptionByProviderRef(ctx context.Context, providerRef string) (model.Subscription, error) {
	args := m.Called(ctx, providerRef)
	return args.Get(0).(model.Subscription), args.Error(1)
}

func (m *MockRepository) CreateSubscription(ctx context.Context, sub model.Subscription, cancelExistingAt time.Time) error {
	args := m.Called(ctx, sub, cancelExistingAt)
	return args.Error(0)
}

func (m *MockRepository) UpdateSubscription(ctx context.Context, sub model.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockRepository) MarkSubscriptionsExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetDailyUsageCount(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) IncrementDailyUsage(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreateNotification(ctx context.Context, notification model.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockRepository) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockRepository) MarkNotificationRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) (model.Notification, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListPlanLimits(ctx context.Context) ([]model.PlanLimit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlanLimit), args.Error(1)
}

func (m *MockRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockGenerator is a testify mock of the AI collaborator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, userID uuid.UUID, filename string, content io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, userID, filename, content, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
