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

var (
	// ErrInvalidPlan rejects subscription plans that cannot be enrolled in.
	// FREE is the absence of a subscription, not a subscribable plan.
	ErrInvalidPlan = errors.New("plan cannot be subscribed to")
	// ErrDuplicateProviderRef signals that the provider reference was already
	// recorded; callers treat the create as already processed.
	ErrDuplicateProviderRef = repository.ErrDuplicateProviderRef
)

// SubscriptionLedger owns subscription records and the invariant that a user
// has at most one ACTIVE subscription at any time.
type SubscriptionLedger struct {
	repo     repository.Repository
	notifier *NotificationLog
	logger   *slog.Logger
}

func NewSubscriptionLedger(repo repository.Repository, notifier *NotificationLog, logger *slog.Logger) *SubscriptionLedger {
	return &SubscriptionLedger{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// ActiveSubscriptionFor returns the user's ACTIVE, non-expired subscription,
// or nil when the user has none.
func (s *SubscriptionLedger) ActiveSubscriptionFor(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.repo.GetActiveSubscriptionByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub.Expired(time.Now()) {
		return nil, nil
	}
	return &sub, nil
}

// ActivePlanFor derives the user's effective plan: the plan of the active
// subscription, or FREE when none exists.
func (s *SubscriptionLedger) ActivePlanFor(ctx context.Context, userID uuid.UUID) (model.Plan, error) {
	sub, err := s.ActiveSubscriptionFor(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return model.PlanFree, nil
	}
	return sub.Plan, nil
}

// Create enrolls the user in a paid plan. Any existing ACTIVE subscription is
// canceled in the same transaction that inserts the new row, so the caller
// never observes two ACTIVE subscriptions for one user.
func (s *SubscriptionLedger) Create(ctx context.Context, userID uuid.UUID, plan model.Plan, provider, providerRef string) (model.Subscription, error) {
	if !plan.Paid() {
		return model.Subscription{}, ErrInvalidPlan
	}

	if _, err := s.repo.GetSubscriptionByProviderRef(ctx, providerRef); err == nil {
		return model.Subscription{}, ErrDuplicateProviderRef
	} else if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return model.Subscription{}, fmt.Errorf("failed to check provider reference: %w", err)
	}

	now := time.Now()
	sub := model.Subscription{
		ID:          uuid.New(),
		UserID:      userID,
		Plan:        plan,
		Status:      model.SubscriptionStatusActive,
		StartedAt:   now,
		Provider:    provider,
		ProviderRef: providerRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateSubscription(ctx, sub, now); err != nil {
		return model.Subscription{}, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "Subscription created", "user_id", userID, "plan", plan, "provider_ref", providerRef)

	s.notifier.TryNotify(ctx, userID, model.NotificationSubscriptionCreated,
		"Subscription activated",
		fmt.Sprintf("Your %s plan is now active.", plan))

	return sub, nil
}

// Cancel ends the user's active subscription effective immediately; the
// effective plan reverts to FREE on the very next ActivePlanFor call. Returns
// nil when there is nothing to cancel.
func (s *SubscriptionLedger) Cancel(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.ActiveSubscriptionFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	now := time.Now()
	sub.Status = model.SubscriptionStatusCanceled
	sub.CanceledAt = &now
	sub.UpdatedAt = now

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "Subscription canceled", "user_id", userID, "plan", sub.Plan)

	s.notifier.TryNotify(ctx, userID, model.NotificationSubscriptionCanceled,
		"Subscription canceled",
		fmt.Sprintf("Your %s plan has been canceled. You are back on the free plan.", sub.Plan))

	return sub, nil
}

// MarkStatusByProviderRef applies a provider-reported state change (payment
// failure, subscription deletion) to the matching subscription row.
func (s *SubscriptionLedger) MarkStatusByProviderRef(ctx context.Context, providerRef string, status model.SubscriptionStatus) (model.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByProviderRef(ctx, providerRef)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("failed to look up subscription by provider reference: %w", err)
	}

	now := time.Now()
	sub.Status = status
	sub.UpdatedAt = now
	if status == model.SubscriptionStatusCanceled && sub.CanceledAt == nil {
		sub.CanceledAt = &now
	}

	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return model.Subscription{}, fmt.Errorf("failed to update subscription status: %w", err)
	}

	s.logger.InfoContext(ctx, "Subscription status updated from provider", "provider_ref", providerRef, "status", status)
	return sub, nil
}
