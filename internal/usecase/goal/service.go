package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// CreateGoalInput represents the input for creating a savings goal
type CreateGoalInput struct {
	UserID       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	Deadline     *time.Time
}

// Service handles savings goal operations
type Service struct {
	Goals         domain.GoalRepository
	Notifications domain.NotificationRepository
	Log           *logrus.Logger
}

// NewService creates a new goal Service instance
func NewService(goals domain.GoalRepository, notifications domain.NotificationRepository, log *logrus.Logger) *Service {
	return &Service{
		Goals:         goals,
		Notifications: notifications,
		Log:           log,
	}
}

// Create creates a savings goal with a zero saved counter
func (s *Service) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	g := &domain.Goal{
		ID:           uuid.New(),
		UserID:       input.UserID,
		Name:         input.Name,
		TargetAmount: input.TargetAmount,
		SavedAmount:  decimal.Zero,
		Deadline:     input.Deadline,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	if err := s.Goals.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return g, nil
}

// Contribute atomically moves the goal's saved counter by amount (negative
// for withdrawals) and appends a GOAL_ACHIEVED notification exactly on the
// first crossing of the target. Withdrawals never notify, mirroring the
// budget tracker's positive-delta-only rule.
func (s *Service) Contribute(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*domain.Goal, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: contribution amount cannot be zero", domain.ErrInvalid)
	}

	g, err := s.Goals.GetByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	oldSaved, newSaved, err := s.Goals.ApplyContribution(ctx, g.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to apply contribution: %w", err)
	}

	if amount.IsPositive() && g.Reached(oldSaved, newSaved) {
		n := &domain.Notification{
			ID:          uuid.New(),
			UserID:      g.UserID,
			Title:       domain.NotificationGoalAchieved,
			Message:     fmt.Sprintf("Congratulations! You reached your '%s' goal of %s", g.Name, g.TargetAmount.StringFixed(2)),
			ReferenceID: g.ID,
			CreatedAt:   time.Now(),
		}
		if err := s.Notifications.Append(ctx, n); err != nil {
			s.Log.WithError(err).WithFields(logrus.Fields{
				"user_id": g.UserID,
				"goal_id": g.ID,
			}).Error("goal achieved notification append failed")
		}
	}

	g.SavedAmount = newSaved
	return g, nil
}

// Get retrieves one goal owned by the user
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	return s.Goals.GetByID(ctx, userID, id)
}

// List retrieves all goals for the user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	return s.Goals.List(ctx, userID)
}

// Delete removes a goal owned by the user
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.Goals.Delete(ctx, userID, id)
}
