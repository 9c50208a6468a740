package service

import (
	"context"
	"fmt"
	"log/slog"

	"studydesk/internal/model"
	"studydesk/internal/telemetry"

	"github.com/google/uuid"
)

// QuotaExceededError is returned when a user has used up the day's AI call
// ceiling. It carries enough detail for the UI to render an upgrade prompt.
type QuotaExceededError struct {
	Plan         model.Plan
	Limit        int
	CurrentUsage int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily AI quota exceeded: %d/%d calls used on plan %s", e.CurrentUsage, e.Limit, e.Plan)
}

// Generator is the opaque AI text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuotaGate is the enforcement boundary every AI invocation must pass
// through. It resolves the caller's plan and ceiling, checks today's counter,
// and either admits the call (incrementing the counter first) or denies it
// with a QuotaExceededError.
//
// The ceiling check and the increment are two separate store operations.
// Two concurrent calls can both read current < ceiling and both proceed, so
// the counter can overshoot the ceiling by a small bounded amount under heavy
// concurrency. The increment itself is atomic, so no update is ever lost.
type QuotaGate struct {
	ledger   *SubscriptionLedger
	catalog  *PlanCatalog
	usage    *UsageCounter
	notifier *NotificationLog
	metrics  *telemetry.QuotaMetrics
	logger   *slog.Logger
}

func NewQuotaGate(ledger *SubscriptionLedger, catalog *PlanCatalog, usage *UsageCounter, notifier *NotificationLog, metrics *telemetry.QuotaMetrics, logger *slog.Logger) *QuotaGate {
	return &QuotaGate{
		ledger:   ledger,
		catalog:  catalog,
		usage:    usage,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// GuardedCall wraps one AI invocation with quota enforcement. On an unbounded
// plan the counter is neither read nor written. A failure of the invocation
// itself is propagated unchanged after a best-effort AI_ERROR notification;
// it is never reinterpreted as a quota error.
func (g *QuotaGate) GuardedCall(ctx context.Context, userID uuid.UUID, call func(ctx context.Context) (string, error)) (string, error) {
	plan, err := g.ledger.ActivePlanFor(ctx, userID)
	if err != nil {
		return "", err
	}

	ceiling, bounded := g.catalog.CeilingFor(plan)
	if bounded {
		today := Today()
		current, err := g.usage.CountFor(ctx, userID, today)
		if err != nil {
			return "", err
		}

		// Edge-triggered: the warning fires only at exactly floor(0.8 *
		// ceiling), once per user per day, not for every count above it.
		if current == ceiling*4/5 {
			g.notifier.TryNotify(ctx, userID, model.NotificationQuotaWarning,
				"Daily AI limit almost reached",
				fmt.Sprintf("You have used %d of your %d daily AI calls on the %s plan.", current, ceiling, plan))
		}

		if current >= ceiling {
			g.logger.InfoContext(ctx, "AI call denied by quota", "user_id", userID, "plan", plan, "limit", ceiling, "current", current)
			g.metrics.RecordDenied(ctx, string(plan))
			g.notifier.TryNotify(ctx, userID, model.NotificationQuotaExceeded,
				"Daily AI limit reached",
				fmt.Sprintf("You have used all %d daily AI calls on the %s plan. Upgrade for a higher limit.", ceiling, plan))
			return "", &QuotaExceededError{Plan: plan, Limit: ceiling, CurrentUsage: current}
		}

		if _, err := g.usage.IncrementFor(ctx, userID, today); err != nil {
			return "", err
		}
	}

	g.metrics.RecordAdmitted(ctx, string(plan))

	result, err := call(ctx)
	if err != nil {
		g.notifier.TryNotify(ctx, userID, model.NotificationAIError,
			"AI request failed",
			"Your AI request could not be completed. Please try again.")
		return "", err
	}
	return result, nil
}
