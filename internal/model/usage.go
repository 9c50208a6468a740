package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyUsage is one user's AI call count for one calendar day. Rows are
// created lazily on the first call of the day, incremented atomically in the
// database, and never deleted or decremented.
type DailyUsage struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Day    time.Time `json:"day" db:"day"`
	Count  int       `json:"count" db:"count"`
}
