package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"studydesk/internal/config"
	"studydesk/internal/model"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// BillingWebhook translates payment-provider events into ledger transitions.
// It is the only path by which PAST_DUE and EXPIRED are reached; payment
// itself (checkout, invoicing) lives entirely with the provider.
type BillingWebhook struct {
	ledger *SubscriptionLedger
	config config.BillingConfig
	logger *slog.Logger
}

func NewBillingWebhook(ledger *SubscriptionLedger, cfg config.BillingConfig, logger *slog.Logger) *BillingWebhook {
	return &BillingWebhook{
		ledger: ledger,
		config: cfg,
		logger: logger,
	}
}

func (b *BillingWebhook) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, b.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return b.handleCheckoutCompleted(ctx, event)
	case "invoice.payment_failed":
		return b.handlePaymentFailed(ctx, event)
	case "customer.subscription.deleted":
		return b.handleSubscriptionDeleted(ctx, event)
	default:
		b.logger.InfoContext(ctx, "Unhandled webhook event", "type", event.Type)
		return nil
	}
}

func (b *BillingWebhook) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userID, err := uuid.Parse(session.Metadata["user_id"])
	if err != nil {
		return fmt.Errorf("checkout session has no valid user_id metadata: %w", err)
	}
	plan := model.Plan(session.Metadata["plan"])
	if session.Subscription == nil {
		return fmt.Errorf("checkout session %s has no subscription", session.ID)
	}

	_, err = b.ledger.Create(ctx, userID, plan, b.config.Provider, session.Subscription.ID)
	if errors.Is(err, ErrDuplicateProviderRef) {
		// Redelivered event; the subscription is already recorded.
		b.logger.InfoContext(ctx, "Duplicate checkout event ignored", "provider_ref", session.Subscription.ID)
		return nil
	}
	return err
}

func (b *BillingWebhook) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}
	if invoice.Subscription == nil {
		return nil
	}

	_, err := b.ledger.MarkStatusByProviderRef(ctx, invoice.Subscription.ID, model.SubscriptionStatusPastDue)
	return err
}

func (b *BillingWebhook) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	_, err := b.ledger.MarkStatusByProviderRef(ctx, sub.ID, model.SubscriptionStatusExpired)
	return err
}
