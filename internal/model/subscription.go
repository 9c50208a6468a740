package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
)

// Subscription is a user's paid plan enrollment. At most one row per user is
// ACTIVE at any time; ProviderRef is globally unique and doubles as the
// idempotency key against double-submission from the payment provider.
type Subscription struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	UserID      uuid.UUID          `json:"user_id" db:"user_id"`
	Plan        Plan               `json:"plan" db:"plan"`
	Status      SubscriptionStatus `json:"status" db:"status"`
	StartedAt   time.Time          `json:"started_at" db:"started_at"`
	EndsAt      *time.Time         `json:"ends_at,omitempty" db:"ends_at"`
	CanceledAt  *time.Time         `json:"canceled_at,omitempty" db:"canceled_at"`
	Provider    string             `json:"provider" db:"provider"`
	ProviderRef string             `json:"provider_ref" db:"provider_ref"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the subscription's paid period has lapsed.
func (s Subscription) Expired(now time.Time) bool {
	return s.EndsAt != nil && s.EndsAt.Before(now)
}
