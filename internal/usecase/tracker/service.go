package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// BudgetAlert is the event published when a spend increase crosses a
// budget threshold. External notifier processes consume it; delivery is
// best effort.
type BudgetAlert struct {
	UserID       uuid.UUID       `json:"user_id"`
	BudgetID     uuid.UUID       `json:"budget_id"`
	CategoryName string          `json:"category_name"`
	Level        domain.Alert    `json:"level"`
	AmountSpent  decimal.Decimal `json:"amount_spent"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// AlertPublisher publishes budget alert events to interested consumers
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert BudgetAlert) error
}

// Service keeps every matching budget's spent counter synchronized with
// expense mutations and raises the notifications implied by newly-crossed
// thresholds.
//
// The budget counters are a derived, best-effort projection, not a source
// of truth: every failure inside the tracker is logged and swallowed so
// the expense mutation that triggered it always succeeds.
type Service struct {
	Budgets       domain.BudgetRepository
	Notifications domain.NotificationRepository
	Alerts        AlertPublisher
	Log           *logrus.Logger
}

// NewService creates a new tracker Service instance. alerts may be a
// no-op publisher when messaging is not configured.
func NewService(
	budgets domain.BudgetRepository,
	notifications domain.NotificationRepository,
	alerts AlertPublisher,
	log *logrus.Logger,
) *Service {
	return &Service{
		Budgets:       budgets,
		Notifications: notifications,
		Alerts:        alerts,
		Log:           log,
	}
}

// ApplyExpenseDelta recomputes the spent counter of every budget matching
// (userID, categoryName, date) by the signed delta.
//
// Callers follow the mutation contract:
//   - create: +amount against the expense's category and date
//   - update: -oldAmount against the old category/date, then +newAmount
//     against the new ones (both calls run even when nothing changed)
//   - delete: -amount against the expense's category and date
//
// Each matching budget is processed independently; one budget's failure
// never prevents processing of the others. Zero matching budgets is a
// valid no-op. Nothing is ever returned to the caller: the tracker's
// failures must not fail the expense mutation that invoked it.
func (s *Service) ApplyExpenseDelta(ctx context.Context, userID uuid.UUID, categoryName string, date time.Time, delta decimal.Decimal) {
	budgets, err := s.Budgets.FindMatching(ctx, userID, categoryName, date)
	if err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"category": categoryName,
		}).Error("budget lookup failed, skipping consumption update")
		return
	}

	for _, budget := range budgets {
		oldSpent, newSpent, err := s.Budgets.ApplyDelta(ctx, budget.ID, delta)
		if err != nil {
			s.Log.WithError(err).WithFields(logrus.Fields{
				"user_id":   userID,
				"budget_id": budget.ID,
			}).Error("budget consumption update failed")
			continue
		}

		// Crossings are only checked when spend increases. Crossing back
		// below a threshold on refunds or deletions is silent.
		if !delta.IsPositive() {
			continue
		}

		alert := budget.Crossing(oldSpent, newSpent)
		if alert == domain.AlertNone {
			continue
		}

		s.notify(ctx, budget, alert, newSpent)
		s.publish(ctx, budget, alert, newSpent)
	}
}

// notify appends the threshold notification. Failures are logged and
// swallowed; the budget update already happened and stands.
func (s *Service) notify(ctx context.Context, budget *domain.Budget, alert domain.Alert, newSpent decimal.Decimal) {
	n := &domain.Notification{
		ID:          uuid.New(),
		UserID:      budget.UserID,
		Title:       alertTitle(alert),
		Message:     alertMessage(budget, alert, newSpent),
		ReferenceID: budget.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.Notifications.Append(ctx, n); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"user_id":   budget.UserID,
			"budget_id": budget.ID,
			"title":     n.Title,
		}).Error("budget alert notification append failed")
	}
}

// publish emits the alert event for external consumers, fire-and-forget
func (s *Service) publish(ctx context.Context, budget *domain.Budget, alert domain.Alert, newSpent decimal.Decimal) {
	evt := BudgetAlert{
		UserID:       budget.UserID,
		BudgetID:     budget.ID,
		CategoryName: budget.CategoryName,
		Level:        alert,
		AmountSpent:  newSpent,
		BudgetAmount: budget.BudgetAmount,
		OccurredAt:   time.Now(),
	}
	if err := s.Alerts.PublishBudgetAlert(ctx, evt); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"user_id":   budget.UserID,
			"budget_id": budget.ID,
			"level":     alert,
		}).Error("budget alert publish failed")
	}
}

func alertTitle(alert domain.Alert) domain.NotificationTitle {
	if alert == domain.AlertExceeded {
		return domain.NotificationBudgetExceeded
	}
	return domain.NotificationBudgetWarning
}

func alertMessage(budget *domain.Budget, alert domain.Alert, newSpent decimal.Decimal) string {
	if alert == domain.AlertExceeded {
		return fmt.Sprintf("You have exceeded your '%s' budget of %s",
			budget.CategoryName, budget.BudgetAmount.StringFixed(2))
	}
	percent := newSpent.Div(budget.BudgetAmount).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("You have used %s%% of your '%s' budget of %s",
		percent.Round(0).String(), budget.CategoryName, budget.BudgetAmount.StringFixed(2))
}

// NopAlertPublisher discards alert events. It stands in when no message
// broker is configured.
type NopAlertPublisher struct{}

// PublishBudgetAlert implements AlertPublisher
func (NopAlertPublisher) PublishBudgetAlert(ctx context.Context, alert BudgetAlert) error {
	return nil
}
