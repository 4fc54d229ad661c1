package goal

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// MockGoalRepository is a mock implementation of GoalRepository for testing
type MockGoalRepository struct {
	mock.Mock
}

func (m *MockGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGoalRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockGoalRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

func (m *MockGoalRepository) ApplyContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// MockNotificationRepository is a mock implementation of NotificationRepository for testing
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Append(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService() (*Service, *MockGoalRepository, *MockNotificationRepository) {
	goals := new(MockGoalRepository)
	notifications := new(MockNotificationRepository)
	return NewService(goals, notifications, testLogger()), goals, notifications
}

func testGoal(userID uuid.UUID) *domain.Goal {
	return &domain.Goal{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         "Emergency Fund",
		TargetAmount: decimal.NewFromInt(1000),
		SavedAmount:  decimal.NewFromInt(900),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreate_StartsWithZeroSaved(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, goals, _ := newTestService()

	goals.On("Create", ctx, mock.MatchedBy(func(g *domain.Goal) bool {
		return g.SavedAmount.IsZero() && g.Name == "Emergency Fund"
	})).Return(nil)

	g, err := svc.Create(ctx, CreateGoalInput{
		UserID:       userID,
		Name:         "Emergency Fund",
		TargetAmount: decimal.NewFromInt(1000),
	})

	assert.NoError(t, err)
	assert.True(t, g.SavedAmount.IsZero())
	goals.AssertExpectations(t)
}

func TestCreate_NonPositiveTargetRejected(t *testing.T) {
	ctx := context.Background()
	svc, goals, _ := newTestService()

	_, err := svc.Create(ctx, CreateGoalInput{
		UserID:       uuid.New(),
		Name:         "Bad Goal",
		TargetAmount: decimal.Zero,
	})

	assert.ErrorIs(t, err, domain.ErrInvalid)
	goals.AssertNotCalled(t, "Create")
}

func TestContribute_ZeroAmountRejected(t *testing.T) {
	ctx := context.Background()
	svc, goals, _ := newTestService()

	_, err := svc.Contribute(ctx, uuid.New(), uuid.New(), decimal.Zero)

	assert.ErrorIs(t, err, domain.ErrInvalid)
	goals.AssertNotCalled(t, "ApplyContribution")
}

func TestContribute_CrossingAppendsGoalAchieved(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, goals, notifications := newTestService()
	g := testGoal(userID)

	goals.On("GetByID", ctx, userID, g.ID).Return(g, nil)
	goals.On("ApplyContribution", ctx, g.ID, decimal.NewFromInt(150)).
		Return(decimal.NewFromInt(900), decimal.NewFromInt(1050), nil)
	notifications.On("Append", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Title == domain.NotificationGoalAchieved && n.ReferenceID == g.ID
	})).Return(nil)

	updated, err := svc.Contribute(ctx, userID, g.ID, decimal.NewFromInt(150))

	assert.NoError(t, err)
	assert.True(t, updated.SavedAmount.Equal(decimal.NewFromInt(1050)))
	notifications.AssertExpectations(t)
}

func TestContribute_AlreadyAchievedStaysQuiet(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, goals, notifications := newTestService()
	g := testGoal(userID)

	// Saved counter already past the target before this contribution
	goals.On("GetByID", ctx, userID, g.ID).Return(g, nil)
	goals.On("ApplyContribution", ctx, g.ID, decimal.NewFromInt(50)).
		Return(decimal.NewFromInt(1100), decimal.NewFromInt(1150), nil)

	_, err := svc.Contribute(ctx, userID, g.ID, decimal.NewFromInt(50))

	assert.NoError(t, err)
	notifications.AssertNotCalled(t, "Append")
}

func TestContribute_WithdrawalNeverNotifies(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, goals, notifications := newTestService()
	g := testGoal(userID)

	goals.On("GetByID", ctx, userID, g.ID).Return(g, nil)
	goals.On("ApplyContribution", ctx, g.ID, decimal.NewFromInt(-200)).
		Return(decimal.NewFromInt(900), decimal.NewFromInt(700), nil)

	updated, err := svc.Contribute(ctx, userID, g.ID, decimal.NewFromInt(-200))

	assert.NoError(t, err)
	assert.True(t, updated.SavedAmount.Equal(decimal.NewFromInt(700)))
	notifications.AssertNotCalled(t, "Append")
}

func TestContribute_NotificationFailureDoesNotFailContribution(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, goals, notifications := newTestService()
	g := testGoal(userID)

	goals.On("GetByID", ctx, userID, g.ID).Return(g, nil)
	goals.On("ApplyContribution", ctx, g.ID, decimal.NewFromInt(150)).
		Return(decimal.NewFromInt(900), decimal.NewFromInt(1050), nil)
	notifications.On("Append", ctx, mock.Anything).Return(errors.New("sink unavailable"))

	updated, err := svc.Contribute(ctx, userID, g.ID, decimal.NewFromInt(150))

	assert.NoError(t, err, "contribution must survive a notification failure")
	assert.True(t, updated.SavedAmount.Equal(decimal.NewFromInt(1050)))
}

func TestContribute_GoalNotFound(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	goalID := uuid.New()
	svc, goals, _ := newTestService()

	goals.On("GetByID", ctx, userID, goalID).Return(nil, domain.ErrNotFound)

	_, err := svc.Contribute(ctx, userID, goalID, decimal.NewFromInt(10))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	goals.AssertNotCalled(t, "ApplyContribution")
}
