package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// BudgetTracker is the narrow interface through which mutation handlers
// drive budget consumption. It never returns an error: tracker failures
// must not fail the transaction mutation that triggered them.
type BudgetTracker interface {
	ApplyExpenseDelta(ctx context.Context, userID uuid.UUID, categoryName string, date time.Time, delta decimal.Decimal)
}

// SummaryInvalidator drops cached dashboard summaries for the months a
// mutation touched. A nil invalidator disables caching.
type SummaryInvalidator interface {
	InvalidateMonthSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month)
}

// CreateTransactionInput represents the input for recording a transaction
type CreateTransactionInput struct {
	UserID       uuid.UUID
	Type         domain.TransactionType
	CategoryName string
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
}

// UpdateTransactionInput represents the input for editing a transaction
type UpdateTransactionInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	Type         domain.TransactionType
	CategoryName string
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
}

// ListTransactionsResult pairs a page of transactions with the total
// matching count for pagination.
type ListTransactionsResult struct {
	Items []*domain.Transaction
	Total int
}

// Service handles expense/income mutations and drives the budget
// consumption tracker per the mutation contract.
type Service struct {
	Transactions domain.TransactionRepository
	Categories   domain.CategoryRepository
	Tracker      BudgetTracker
	Cache        SummaryInvalidator
}

// NewService creates a new transaction Service instance. cache may be nil
// when dashboard caching is not configured.
func NewService(
	transactions domain.TransactionRepository,
	categories domain.CategoryRepository,
	tracker BudgetTracker,
	cache SummaryInvalidator,
) *Service {
	return &Service{
		Transactions: transactions,
		Categories:   categories,
		Tracker:      tracker,
		Cache:        cache,
	}
}

// Create validates and persists a transaction, then feeds the spend
// increase to the tracker for expenses. The mutation succeeds regardless
// of what happens inside the tracker.
func (s *Service) Create(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       input.UserID,
		Type:         input.Type,
		CategoryName: input.CategoryName,
		Description:  input.Description,
		Amount:       input.Amount,
		Date:         input.Date,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	if err := s.checkCategory(ctx, input.UserID, input.CategoryName, input.Type); err != nil {
		return nil, err
	}

	if err := s.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if tx.Type == domain.TransactionTypeExpense {
		s.Tracker.ApplyExpenseDelta(ctx, tx.UserID, tx.CategoryName, tx.Date, tx.Amount)
	}
	s.invalidate(ctx, tx.UserID, tx.Date)

	return tx, nil
}

// Update edits a transaction and issues the paired tracker calls: the old
// amount is removed from budgets matching the old category/date, the new
// amount is added against the new ones. Both calls run even when nothing
// changed; against the same budget they net to zero.
func (s *Service) Update(ctx context.Context, input UpdateTransactionInput) (*domain.Transaction, error) {
	old, err := s.Transactions.GetByID(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:           old.ID,
		UserID:       old.UserID,
		Type:         input.Type,
		CategoryName: input.CategoryName,
		Description:  input.Description,
		Amount:       input.Amount,
		Date:         input.Date,
		CreatedAt:    old.CreatedAt,
		UpdatedAt:    time.Now(),
	}

	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	if err := s.checkCategory(ctx, input.UserID, input.CategoryName, input.Type); err != nil {
		return nil, err
	}

	if err := s.Transactions.Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if old.Type == domain.TransactionTypeExpense {
		s.Tracker.ApplyExpenseDelta(ctx, old.UserID, old.CategoryName, old.Date, old.Amount.Neg())
	}
	if tx.Type == domain.TransactionTypeExpense {
		s.Tracker.ApplyExpenseDelta(ctx, tx.UserID, tx.CategoryName, tx.Date, tx.Amount)
	}
	s.invalidate(ctx, old.UserID, old.Date)
	s.invalidate(ctx, tx.UserID, tx.Date)

	return tx, nil
}

// Delete removes a transaction and, for expenses, removes its amount from
// matching budgets.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	old, err := s.Transactions.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.Transactions.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if old.Type == domain.TransactionTypeExpense {
		s.Tracker.ApplyExpenseDelta(ctx, old.UserID, old.CategoryName, old.Date, old.Amount.Neg())
	}
	s.invalidate(ctx, userID, old.Date)

	return nil
}

// Get retrieves one transaction owned by the user
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.Transactions.GetByID(ctx, userID, id)
}

// List retrieves a filtered page of transactions plus the total count
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) (*ListTransactionsResult, error) {
	items, err := s.Transactions.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.Transactions.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	return &ListTransactionsResult{Items: items, Total: total}, nil
}

func (s *Service) checkCategory(ctx context.Context, userID uuid.UUID, name string, txType domain.TransactionType) error {
	exists, err := s.Categories.Exists(ctx, userID, name, txType.CategoryType())
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s category '%s' does not exist", domain.ErrInvalid, txType, name)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID, date time.Time) {
	if s.Cache == nil {
		return
	}
	s.Cache.InvalidateMonthSummary(ctx, userID, date.Year(), date.Month())
}
