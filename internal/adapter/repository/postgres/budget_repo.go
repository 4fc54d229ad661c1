package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// budgetRepository implements domain.BudgetRepository
type budgetRepository struct {
	db *DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *DB) domain.BudgetRepository {
	return &budgetRepository{db: db}
}

const budgetColumns = `id, user_id, category_name, budget_amount, amount_spent, frequency, period_start, period_end, alert_threshold, created_at, updated_at`

// Create creates a new budget
func (r *budgetRepository) Create(ctx context.Context, b *domain.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		b.CategoryName,
		b.BudgetAmount.String(),
		b.AmountSpent.String(),
		string(b.Frequency),
		b.PeriodStart,
		b.PeriodEnd,
		b.AlertThreshold,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

// GetByID retrieves a budget owned by the given user
func (r *budgetRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE id = $1 AND user_id = $2
	`

	b, err := scanBudget(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget by ID: %w", err)
	}

	return b, nil
}

// Update persists mutable budget fields. The spent counter is deliberately
// absent: it only moves through ApplyDelta.
func (r *budgetRepository) Update(ctx context.Context, b *domain.Budget) error {
	query := `
		UPDATE budgets
		SET category_name = $1, budget_amount = $2, frequency = $3,
		    period_start = $4, period_end = $5, alert_threshold = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`

	res, err := r.db.ExecContext(ctx, query,
		b.CategoryName,
		b.BudgetAmount.String(),
		string(b.Frequency),
		b.PeriodStart,
		b.PeriodEnd,
		b.AlertThreshold,
		b.UpdatedAt,
		b.ID,
		b.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	return checkAffected(res)
}

// Delete removes a budget owned by the given user
func (r *budgetRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return checkAffected(res)
}

// List retrieves all budgets for a user
func (r *budgetRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1
		ORDER BY period_start DESC, category_name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	return collectBudgets(rows)
}

// FindMatching retrieves every budget whose category matches exactly and
// whose inclusive window contains the date.
func (r *budgetRepository) FindMatching(ctx context.Context, userID uuid.UUID, categoryName string, date time.Time) ([]*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND category_name = $2
		  AND period_start <= $3 AND period_end >= $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, categoryName, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find matching budgets: %w", err)
	}
	defer rows.Close()

	return collectBudgets(rows)
}

// FindOverlapping retrieves budgets whose window intersects [from, to]
func (r *budgetRepository) FindOverlapping(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Budget, error) {
	query := `
		SELECT ` + budgetColumns + `
		FROM budgets
		WHERE user_id = $1 AND period_start <= $2 AND period_end >= $3
		ORDER BY category_name
	`

	rows, err := r.db.QueryContext(ctx, query, userID, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping budgets: %w", err)
	}
	defer rows.Close()

	return collectBudgets(rows)
}

// ApplyDelta adds delta to the spent counter as a single atomic UPDATE and
// returns the pre- and post-image, so concurrent mutations against the
// same budget cannot lose increments and threshold checks never race a
// separate read.
func (r *budgetRepository) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		UPDATE budgets
		SET amount_spent = amount_spent + $1, updated_at = now()
		WHERE id = $2
		RETURNING amount_spent - $1, amount_spent
	`

	var oldStr, newStr string
	err := r.db.QueryRowContext(ctx, query, delta.String(), id).Scan(&oldStr, &newStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to apply budget delta: %w", err)
	}

	oldSpent, err := decimal.NewFromString(oldStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse previous amount_spent: %w", err)
	}
	newSpent, err := decimal.NewFromString(newStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse amount_spent: %w", err)
	}

	return oldSpent, newSpent, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var b domain.Budget
	var amountStr, spentStr string

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CategoryName,
		&amountStr,
		&spentStr,
		&b.Frequency,
		&b.PeriodStart,
		&b.PeriodEnd,
		&b.AlertThreshold,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.BudgetAmount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget_amount: %w", err)
	}
	b.AmountSpent, err = decimal.NewFromString(spentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount_spent: %w", err)
	}

	return &b, nil
}

func collectBudgets(rows *sql.Rows) ([]*domain.Budget, error) {
	budgets := make([]*domain.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return budgets, nil
}

// checkAffected maps a zero-row write to ErrNotFound
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
