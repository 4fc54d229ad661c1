package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) (int, error) {
	args := m.Called(ctx, userID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) SumByType(ctx context.Context, userID uuid.UUID, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, txType, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumByCategory(ctx context.Context, userID uuid.UUID, txType domain.TransactionType, from, to time.Time) ([]domain.CategoryTotal, error) {
	args := m.Called(ctx, userID, txType, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryTotal), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository for testing
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, userID uuid.UUID, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	args := m.Called(ctx, userID, typeFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Exists(ctx context.Context, userID uuid.UUID, name string, categoryType domain.CategoryType) (bool, error) {
	args := m.Called(ctx, userID, name, categoryType)
	return args.Bool(0), args.Error(1)
}

// trackerCall records one ApplyExpenseDelta invocation
type trackerCall struct {
	UserID       uuid.UUID
	CategoryName string
	Date         time.Time
	Delta        decimal.Decimal
}

// spyTracker records tracker invocations in order
type spyTracker struct {
	calls []trackerCall
}

func (s *spyTracker) ApplyExpenseDelta(ctx context.Context, userID uuid.UUID, categoryName string, date time.Time, delta decimal.Decimal) {
	s.calls = append(s.calls, trackerCall{UserID: userID, CategoryName: categoryName, Date: date, Delta: delta})
}

// spyInvalidator records which months were invalidated
type spyInvalidator struct {
	months []string
}

func (s *spyInvalidator) InvalidateMonthSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) {
	s.months = append(s.months, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
}

func newTestService() (*Service, *MockTransactionRepository, *MockCategoryRepository, *spyTracker, *spyInvalidator) {
	transactions := new(MockTransactionRepository)
	categories := new(MockCategoryRepository)
	trk := &spyTracker{}
	inv := &spyInvalidator{}
	return NewService(transactions, categories, trk, inv), transactions, categories, trk, inv
}

func expenseInput(userID uuid.UUID) CreateTransactionInput {
	return CreateTransactionInput{
		UserID:       userID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Description:  "Weekly shop",
		Amount:       decimal.NewFromInt(75),
		Date:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_ExpenseFeedsTracker(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, transactions, categories, trk, inv := newTestService()

	categories.On("Exists", ctx, userID, "Groceries", domain.CategoryTypeExpense).Return(true, nil)
	transactions.On("Create", ctx, mock.Anything).Return(nil)

	tx, err := svc.Create(ctx, expenseInput(userID))

	assert.NoError(t, err)
	assert.Len(t, trk.calls, 1)
	assert.Equal(t, "Groceries", trk.calls[0].CategoryName)
	assert.True(t, trk.calls[0].Delta.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, tx.Date, trk.calls[0].Date)
	assert.Equal(t, []string{"2026-08"}, inv.months)
}

func TestCreate_IncomeNeverTouchesTracker(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, transactions, categories, trk, _ := newTestService()

	input := expenseInput(userID)
	input.Type = domain.TransactionTypeIncome
	input.CategoryName = "Salary"

	categories.On("Exists", ctx, userID, "Salary", domain.CategoryTypeIncome).Return(true, nil)
	transactions.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, input)

	assert.NoError(t, err)
	assert.Empty(t, trk.calls, "income must not drive budget consumption")
}

func TestCreate_UnknownCategoryRejected(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, transactions, categories, trk, _ := newTestService()

	categories.On("Exists", ctx, userID, "Groceries", domain.CategoryTypeExpense).Return(false, nil)

	_, err := svc.Create(ctx, expenseInput(userID))

	assert.ErrorIs(t, err, domain.ErrInvalid)
	transactions.AssertNotCalled(t, "Create")
	assert.Empty(t, trk.calls)
}

func TestUpdate_IssuesPairedTrackerCalls(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	txID := uuid.New()
	svc, transactions, categories, trk, inv := newTestService()

	oldDate := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	newDate := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	old := &domain.Transaction{
		ID:           txID,
		UserID:       userID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Amount:       decimal.NewFromInt(75),
		Date:         oldDate,
	}

	transactions.On("GetByID", ctx, userID, txID).Return(old, nil)
	categories.On("Exists", ctx, userID, "Dining", domain.CategoryTypeExpense).Return(true, nil)
	transactions.On("Update", ctx, mock.Anything).Return(nil)

	_, err := svc.Update(ctx, UpdateTransactionInput{
		UserID:       userID,
		ID:           txID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Dining",
		Amount:       decimal.NewFromInt(90),
		Date:         newDate,
	})

	assert.NoError(t, err)
	// Removal leg first, against the old category and date
	assert.Len(t, trk.calls, 2)
	assert.Equal(t, "Groceries", trk.calls[0].CategoryName)
	assert.Equal(t, oldDate, trk.calls[0].Date)
	assert.True(t, trk.calls[0].Delta.Equal(decimal.NewFromInt(-75)))
	// Addition leg second, against the new ones
	assert.Equal(t, "Dining", trk.calls[1].CategoryName)
	assert.Equal(t, newDate, trk.calls[1].Date)
	assert.True(t, trk.calls[1].Delta.Equal(decimal.NewFromInt(90)))
	// Both touched months drop their cached summaries
	assert.Equal(t, []string{"2026-07", "2026-08"}, inv.months)
}

func TestUpdate_UnchangedFieldsStillPairCalls(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	txID := uuid.New()
	svc, transactions, categories, trk, _ := newTestService()

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	old := &domain.Transaction{
		ID:           txID,
		UserID:       userID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Amount:       decimal.NewFromInt(75),
		Date:         date,
	}

	transactions.On("GetByID", ctx, userID, txID).Return(old, nil)
	categories.On("Exists", ctx, userID, "Groceries", domain.CategoryTypeExpense).Return(true, nil)
	transactions.On("Update", ctx, mock.Anything).Return(nil)

	_, err := svc.Update(ctx, UpdateTransactionInput{
		UserID:       userID,
		ID:           txID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Amount:       decimal.NewFromInt(75),
		Date:         date,
	})

	assert.NoError(t, err)
	assert.Len(t, trk.calls, 2, "the pair runs even when nothing changed")
	assert.True(t, trk.calls[0].Delta.Neg().Equal(trk.calls[1].Delta), "pair nets to zero")
}

func TestUpdate_ExpenseToIncomeOnlyRemoves(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	txID := uuid.New()
	svc, transactions, categories, trk, _ := newTestService()

	old := &domain.Transaction{
		ID:           txID,
		UserID:       userID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Amount:       decimal.NewFromInt(75),
		Date:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	transactions.On("GetByID", ctx, userID, txID).Return(old, nil)
	categories.On("Exists", ctx, userID, "Salary", domain.CategoryTypeIncome).Return(true, nil)
	transactions.On("Update", ctx, mock.Anything).Return(nil)

	_, err := svc.Update(ctx, UpdateTransactionInput{
		UserID:       userID,
		ID:           txID,
		Type:         domain.TransactionTypeIncome,
		CategoryName: "Salary",
		Amount:       decimal.NewFromInt(75),
		Date:         old.Date,
	})

	assert.NoError(t, err)
	assert.Len(t, trk.calls, 1, "only the removal leg runs when the new type is income")
	assert.True(t, trk.calls[0].Delta.IsNegative())
}

func TestDelete_ExpenseRemovesSpend(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	txID := uuid.New()
	svc, transactions, _, trk, inv := newTestService()

	old := &domain.Transaction{
		ID:           txID,
		UserID:       userID,
		Type:         domain.TransactionTypeExpense,
		CategoryName: "Groceries",
		Amount:       decimal.NewFromInt(75),
		Date:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	transactions.On("GetByID", ctx, userID, txID).Return(old, nil)
	transactions.On("Delete", ctx, userID, txID).Return(nil)

	err := svc.Delete(ctx, userID, txID)

	assert.NoError(t, err)
	assert.Len(t, trk.calls, 1)
	assert.True(t, trk.calls[0].Delta.Equal(decimal.NewFromInt(-75)))
	assert.Equal(t, []string{"2026-08"}, inv.months)
}

func TestDelete_IncomeSkipsTracker(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	txID := uuid.New()
	svc, transactions, _, trk, _ := newTestService()

	old := &domain.Transaction{
		ID:           txID,
		UserID:       userID,
		Type:         domain.TransactionTypeIncome,
		CategoryName: "Salary",
		Amount:       decimal.NewFromInt(2000),
		Date:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	transactions.On("GetByID", ctx, userID, txID).Return(old, nil)
	transactions.On("Delete", ctx, userID, txID).Return(nil)

	err := svc.Delete(ctx, userID, txID)

	assert.NoError(t, err)
	assert.Empty(t, trk.calls)
}

func TestList_PairsItemsWithTotal(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc, transactions, _, _, _ := newTestService()

	filter := domain.TransactionFilter{Limit: 10}
	items := []*domain.Transaction{
		{ID: uuid.New(), UserID: userID, Type: domain.TransactionTypeExpense, CategoryName: "Groceries", Amount: decimal.NewFromInt(75)},
	}

	transactions.On("List", ctx, userID, filter).Return(items, nil)
	transactions.On("Count", ctx, userID, filter).Return(42, nil)

	result, err := svc.List(ctx, userID, filter)

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, 42, result.Total)
}

func TestNilInvalidatorIsSafe(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	transactions := new(MockTransactionRepository)
	categories := new(MockCategoryRepository)
	svc := NewService(transactions, categories, &spyTracker{}, nil)

	categories.On("Exists", ctx, userID, "Groceries", domain.CategoryTypeExpense).Return(true, nil)
	transactions.On("Create", ctx, mock.Anything).Return(nil)

	_, err := svc.Create(ctx, expenseInput(userID))

	assert.NoError(t, err)
}
