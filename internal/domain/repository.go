package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a transaction listing. Zero values mean
// "no filter"; Limit and Offset drive pagination.
type TransactionFilter struct {
	Type         TransactionType // empty for all types
	CategoryName string          // empty for all categories
	From         *time.Time      // inclusive
	To           *time.Time      // inclusive
	Limit        int
	Offset       int
}

// CategoryTotal is an aggregation row: the summed amount for one category
type CategoryTotal struct {
	CategoryName string
	Total        decimal.Decimal
}

// BudgetRepository defines the interface for budget persistence operations
type BudgetRepository interface {
	// Create creates a new budget
	Create(ctx context.Context, budget *Budget) error

	// GetByID retrieves a budget owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Budget, error)

	// Update persists mutable budget fields. AmountSpent is never written
	// here; it only moves through ApplyDelta.
	Update(ctx context.Context, budget *Budget) error

	// Delete removes a budget owned by the given user
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List retrieves all budgets for a user
	List(ctx context.Context, userID uuid.UUID) ([]*Budget, error)

	// FindMatching retrieves every budget for the user whose category name
	// matches exactly and whose inclusive window contains the date. Zero,
	// one or multiple budgets may match.
	FindMatching(ctx context.Context, userID uuid.UUID, categoryName string, date time.Time) ([]*Budget, error)

	// FindOverlapping retrieves budgets whose window intersects the
	// inclusive [from, to] range, for dashboard utilization.
	FindOverlapping(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Budget, error)

	// ApplyDelta atomically adds delta to the budget's spent counter at the
	// storage layer and returns the pre- and post-image of the counter, so
	// threshold checks never race a separate read.
	ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (oldSpent, newSpent decimal.Decimal, err error)
}

// CategoryRepository defines the interface for the category directory
type CategoryRepository interface {
	// Create creates a new category; returns ErrAlreadyExists on a
	// duplicate (user, name, type) triple
	Create(ctx context.Context, category *Category) error

	// Delete removes a category owned by the given user
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List retrieves the user's categories, optionally filtered by type.
	// If typeFilter is empty, returns all categories.
	List(ctx context.Context, userID uuid.UUID, typeFilter CategoryType) ([]*Category, error)

	// Exists reports whether a category with the exact name and type
	// exists for the user
	Exists(ctx context.Context, userID uuid.UUID, name string, categoryType CategoryType) (bool, error)
}

// TransactionRepository defines the interface for transaction persistence
// and monthly aggregation.
type TransactionRepository interface {
	// Create creates a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)

	// Update persists a mutated transaction
	Update(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction owned by the given user
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List retrieves transactions matching the filter, newest first
	List(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*Transaction, error)

	// Count returns the number of transactions matching the filter,
	// ignoring Limit and Offset
	Count(ctx context.Context, userID uuid.UUID, filter TransactionFilter) (int, error)

	// SumByType sums amounts of the given type with dates in the
	// inclusive [from, to] range
	SumByType(ctx context.Context, userID uuid.UUID, txType TransactionType, from, to time.Time) (decimal.Decimal, error)

	// SumByCategory sums amounts of the given type per category, dates in
	// the inclusive [from, to] range, largest total first
	SumByCategory(ctx context.Context, userID uuid.UUID, txType TransactionType, from, to time.Time) ([]CategoryTotal, error)
}

// NotificationRepository defines the append-only notification sink plus
// the read-state operations.
type NotificationRepository interface {
	// Append persists a new notification; fire-and-forget semantics are
	// the caller's concern
	Append(ctx context.Context, n *Notification) error

	// List retrieves the user's notifications, newest first
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error)

	// UnreadCount returns the number of unread notifications
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)

	// MarkRead flags one notification as read
	MarkRead(ctx context.Context, userID, id uuid.UUID) error

	// MarkAllRead flags every notification of the user as read
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// GoalRepository defines the interface for savings goal persistence
type GoalRepository interface {
	// Create creates a new goal
	Create(ctx context.Context, goal *Goal) error

	// GetByID retrieves a goal owned by the given user
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error)

	// Delete removes a goal owned by the given user
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// List retrieves all goals for a user
	List(ctx context.Context, userID uuid.UUID) ([]*Goal, error)

	// ApplyContribution atomically adds amount to the goal's saved counter
	// and returns the pre- and post-image, mirroring BudgetRepository.ApplyDelta
	ApplyContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (oldSaved, newSaved decimal.Decimal, err error)
}
