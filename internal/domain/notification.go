package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationTitle is an enumerated tag identifying the event that
// produced a notification.
type NotificationTitle string

const (
	NotificationBudgetCreated  NotificationTitle = "BUDGET_CREATED"
	NotificationBudgetExceeded NotificationTitle = "BUDGET_EXCEEDED"
	NotificationBudgetWarning  NotificationTitle = "BUDGET_WARNING"
	NotificationBudgetDeleted  NotificationTitle = "BUDGET_DELETED"
	NotificationGoalAchieved   NotificationTitle = "GOAL_ACHIEVED"
)

// Notification represents a user-facing message keyed by a reference
// entity. Notifications are write-once; only the read flag is mutated
// afterwards.
type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       NotificationTitle
	Message     string
	ReferenceID uuid.UUID // the budget or goal that produced the message
	IsRead      bool
	CreatedAt   time.Time
}
