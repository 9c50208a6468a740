package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studydesk/internal/model"
	"studydesk/internal/repository"
	"studydesk/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLedger(repo *MockRepository) *service.SubscriptionLedger {
	logger := testLogger()
	notifier := service.NewNotificationLog(repo, logger)
	return service.NewSubscriptionLedger(repo, notifier, logger)
}

func TestSubscriptionLedger_ActivePlanFor(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		setupMocks func(repo *MockRepository)
		wantPlan   model.Plan
	}{
		{
			name: "no subscription falls back to free",
			setupMocks: func(repo *MockRepository) {
				repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
					Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
			},
			wantPlan: model.PlanFree,
		},
		{
			name: "expired subscription falls back to free",
			setupMocks: func(repo *MockRepository) {
				sub := activeSubscription(userID, model.PlanStudent)
				past := time.Now().Add(-time.Minute)
				sub.EndsAt = &past
				repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).Return(sub, nil)
			},
			wantPlan: model.PlanFree,
		},
		{
			name: "active subscription yields its plan",
			setupMocks: func(repo *MockRepository) {
				repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
					Return(activeSubscription(userID, model.PlanStudent), nil)
			},
			wantPlan: model.PlanStudent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)
			ledger := newTestLedger(repo)

			plan, err := ledger.ActivePlanFor(context.Background(), userID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantPlan, plan)
			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionLedger_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("rejects the free plan", func(t *testing.T) {
		repo := new(MockRepository)
		ledger := newTestLedger(repo)

		_, err := ledger.Create(context.Background(), userID, model.PlanFree, "stripe", "sub_123")

		require.ErrorIs(t, err, service.ErrInvalidPlan)
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a reused provider reference", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(activeSubscription(userID, model.PlanStudent), nil)
		ledger := newTestLedger(repo)

		_, err := ledger.Create(context.Background(), userID, model.PlanStudent, "stripe", "sub_123")

		require.ErrorIs(t, err, service.ErrDuplicateProviderRef)
		repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inserts an active subscription and notifies", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub model.Subscription) bool {
			return sub.UserID == userID &&
				sub.Plan == model.PlanStudent &&
				sub.Status == model.SubscriptionStatusActive &&
				sub.ProviderRef == "sub_123" &&
				sub.ID != uuid.Nil
		}), mock.Anything).Return(nil)
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.Type == model.NotificationSubscriptionCreated && n.UserID == userID
		})).Return(nil).Once()
		ledger := newTestLedger(repo)

		sub, err := ledger.Create(context.Background(), userID, model.PlanStudent, "stripe", "sub_123")

		require.NoError(t, err)
		assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, model.PlanStudent, sub.Plan)
		repo.AssertExpectations(t)
	})

	t.Run("succeeds even when the notification fails", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		repo.On("CreateSubscription", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("db down"))
		ledger := newTestLedger(repo)

		_, err := ledger.Create(context.Background(), userID, model.PlanPremium, "stripe", "sub_123")

		require.NoError(t, err)
	})

	t.Run("surfaces a duplicate detected at insert time", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		repo.On("CreateSubscription", mock.Anything, mock.Anything, mock.Anything).
			Return(repository.ErrDuplicateProviderRef)
		ledger := newTestLedger(repo)

		_, err := ledger.Create(context.Background(), userID, model.PlanStudent, "stripe", "sub_123")

		require.ErrorIs(t, err, service.ErrDuplicateProviderRef)
	})
}

func TestSubscriptionLedger_Cancel(t *testing.T) {
	userID := uuid.New()

	t.Run("nothing to cancel", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		ledger := newTestLedger(repo)

		sub, err := ledger.Cancel(context.Background(), userID)

		require.NoError(t, err)
		assert.Nil(t, sub)
		repo.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything)
	})

	t.Run("cancels the active subscription and notifies", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
			Return(activeSubscription(userID, model.PlanStudent), nil)
		repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(sub model.Subscription) bool {
			return sub.Status == model.SubscriptionStatusCanceled && sub.CanceledAt != nil
		})).Return(nil)
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.Type == model.NotificationSubscriptionCanceled && n.UserID == userID
		})).Return(nil).Once()
		ledger := newTestLedger(repo)

		sub, err := ledger.Cancel(context.Background(), userID)

		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, model.SubscriptionStatusCanceled, sub.Status)
		assert.NotNil(t, sub.CanceledAt)
		repo.AssertExpectations(t)
	})

	t.Run("plan reverts to free once canceled", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
			Return(activeSubscription(userID, model.PlanPremium), nil).Once()
		repo.On("UpdateSubscription", mock.Anything, mock.Anything).Return(nil)
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)
		repo.On("GetActiveSubscriptionByUserID", mock.Anything, userID).
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		ledger := newTestLedger(repo)

		_, err := ledger.Cancel(context.Background(), userID)
		require.NoError(t, err)

		plan, err := ledger.ActivePlanFor(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, model.PlanFree, plan)
	})
}

func TestSubscriptionLedger_MarkStatusByProviderRef(t *testing.T) {
	userID := uuid.New()

	t.Run("marks payment failure past due", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(activeSubscription(userID, model.PlanStudent), nil)
		repo.On("UpdateSubscription", mock.Anything, mock.MatchedBy(func(sub model.Subscription) bool {
			return sub.Status == model.SubscriptionStatusPastDue
		})).Return(nil)
		ledger := newTestLedger(repo)

		sub, err := ledger.MarkStatusByProviderRef(context.Background(), "sub_123", model.SubscriptionStatusPastDue)

		require.NoError(t, err)
		assert.Equal(t, model.SubscriptionStatusPastDue, sub.Status)
		repo.AssertExpectations(t)
	})

	t.Run("cancellation sets the canceled timestamp", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_123").
			Return(activeSubscription(userID, model.PlanStudent), nil)
		repo.On("UpdateSubscription", mock.Anything, mock.Anything).Return(nil)
		ledger := newTestLedger(repo)

		sub, err := ledger.MarkStatusByProviderRef(context.Background(), "sub_123", model.SubscriptionStatusCanceled)

		require.NoError(t, err)
		assert.NotNil(t, sub.CanceledAt)
	})

	t.Run("unknown provider reference fails", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetSubscriptionByProviderRef", mock.Anything, "sub_unknown").
			Return(model.Subscription{}, repository.ErrSubscriptionNotFound)
		ledger := newTestLedger(repo)

		_, err := ledger.MarkStatusByProviderRef(context.Background(), "sub_unknown", model.SubscriptionStatusExpired)

		require.Error(t, err)
		repo.AssertNotCalled(t, "UpdateSubscription", mock.Anything, mock.Anything)
	})
}
