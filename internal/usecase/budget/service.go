package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// CreateBudgetInput represents the input for creating a budget
type CreateBudgetInput struct {
	UserID         uuid.UUID
	CategoryName   string
	BudgetAmount   decimal.Decimal
	Frequency      domain.Frequency
	PeriodStart    time.Time
	AlertThreshold int // 0 means "use the default"
}

// UpdateBudgetInput represents the input for updating a budget
type UpdateBudgetInput struct {
	UserID         uuid.UUID
	ID             uuid.UUID
	CategoryName   string
	BudgetAmount   decimal.Decimal
	Frequency      domain.Frequency
	PeriodStart    time.Time
	AlertThreshold int
}

// Service handles budget lifecycle operations
type Service struct {
	Budgets       domain.BudgetRepository
	Categories    domain.CategoryRepository
	Notifications domain.NotificationRepository
	Log           *logrus.Logger
}

// NewService creates a new budget Service instance
func NewService(
	budgets domain.BudgetRepository,
	categories domain.CategoryRepository,
	notifications domain.NotificationRepository,
	log *logrus.Logger,
) *Service {
	return &Service{
		Budgets:       budgets,
		Categories:    categories,
		Notifications: notifications,
		Log:           log,
	}
}

// Create creates a budget envelope.
// Logic:
//  1. Default the alert threshold when unset
//  2. Derive the inclusive period end from start and frequency
//  3. Validate and check the category directory
//  4. Persist, then append a BUDGET_CREATED notification (best effort)
//
// The spent counter starts at zero and afterwards only moves through the
// consumption tracker; creating a budget mid-window does not backfill it
// from existing expenses.
func (s *Service) Create(ctx context.Context, input CreateBudgetInput) (*domain.Budget, error) {
	threshold := input.AlertThreshold
	if threshold == 0 {
		threshold = domain.DefaultAlertThreshold
	}

	b := &domain.Budget{
		ID:             uuid.New(),
		UserID:         input.UserID,
		CategoryName:   input.CategoryName,
		BudgetAmount:   input.BudgetAmount,
		AmountSpent:    decimal.Zero,
		Frequency:      input.Frequency,
		PeriodStart:    input.PeriodStart,
		PeriodEnd:      input.Frequency.PeriodEnd(input.PeriodStart),
		AlertThreshold: threshold,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	exists, err := s.Categories.Exists(ctx, input.UserID, input.CategoryName, domain.CategoryTypeBudget)
	if err != nil {
		return nil, fmt.Errorf("failed to check budget category: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: budget category '%s' does not exist", domain.ErrInvalid, input.CategoryName)
	}

	if err := s.Budgets.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	s.notify(ctx, b, domain.NotificationBudgetCreated,
		fmt.Sprintf("Budget of %s created for category '%s'", b.BudgetAmount.StringFixed(2), b.CategoryName))

	return b, nil
}

// Update replaces a budget's mutable fields. The period end is re-derived
// from the new start and frequency; the spent counter is left untouched
// even when the window or category changes: the counter only reflects
// deltas applied since the window was set.
func (s *Service) Update(ctx context.Context, input UpdateBudgetInput) (*domain.Budget, error) {
	b, err := s.Budgets.GetByID(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	threshold := input.AlertThreshold
	if threshold == 0 {
		threshold = domain.DefaultAlertThreshold
	}

	b.CategoryName = input.CategoryName
	b.BudgetAmount = input.BudgetAmount
	b.Frequency = input.Frequency
	b.PeriodStart = input.PeriodStart
	b.PeriodEnd = input.Frequency.PeriodEnd(input.PeriodStart)
	b.AlertThreshold = threshold
	b.UpdatedAt = time.Now()

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	if err := s.Budgets.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	return b, nil
}

// Delete removes a budget and appends a BUDGET_DELETED notification
// (best effort).
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	b, err := s.Budgets.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.Budgets.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	s.notify(ctx, b, domain.NotificationBudgetDeleted,
		fmt.Sprintf("Budget for category '%s' was deleted", b.CategoryName))

	return nil
}

// Get retrieves one budget owned by the user
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	return s.Budgets.GetByID(ctx, userID, id)
}

// List retrieves all budgets for the user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	return s.Budgets.List(ctx, userID)
}

// notify appends a lifecycle notification; failures are logged, never
// propagated (same sink semantics as the tracker).
func (s *Service) notify(ctx context.Context, b *domain.Budget, title domain.NotificationTitle, message string) {
	n := &domain.Notification{
		ID:          uuid.New(),
		UserID:      b.UserID,
		Title:       title,
		Message:     message,
		ReferenceID: b.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.Notifications.Append(ctx, n); err != nil {
		s.Log.WithError(err).WithFields(logrus.Fields{
			"user_id":   b.UserID,
			"budget_id": b.ID,
			"title":     title,
		}).Error("budget lifecycle notification append failed")
	}
}
