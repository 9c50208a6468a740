package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationSubscriptionCreated  NotificationType = "SUBSCRIPTION_CREATED"
	NotificationSubscriptionCanceled NotificationType = "SUBSCRIPTION_CANCELED"
	NotificationQuotaWarning         NotificationType = "QUOTA_WARNING"
	NotificationQuotaExceeded        NotificationType = "QUOTA_EXCEEDED"
	NotificationAISuccess            NotificationType = "AI_SUCCESS"
	NotificationAIError              NotificationType = "AI_ERROR"
	NotificationQuizGenerated        NotificationType = "QUIZ_GENERATED"
	NotificationCourseProcessed      NotificationType = "COURSE_PROCESSED"
	NotificationInfo                 NotificationType = "INFO"
)

// Notification is a user-facing event record. Rows are created by business
// rule triggers only and mutated only by the mark-as-read operations.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
