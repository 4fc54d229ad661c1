package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, user_id, tx_type, category_name, description, amount, tx_date, created_at, updated_at`

// Create creates a new transaction
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		string(tx.Type),
		tx.CategoryName,
		tx.Description,
		tx.Amount.String(),
		tx.Date,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction owned by the given user
func (r *transactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}

	return tx, nil
}

// Update persists a mutated transaction
func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET tx_type = $1, category_name = $2, description = $3,
		    amount = $4, tx_date = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`

	res, err := r.db.ExecContext(ctx, query,
		string(tx.Type),
		tx.CategoryName,
		tx.Description,
		tx.Amount.String(),
		tx.Date,
		tx.UpdatedAt,
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return checkAffected(res)
}

// Delete removes a transaction owned by the given user
func (r *transactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return checkAffected(res)
}

// List retrieves transactions matching the filter, newest first
func (r *transactionRepository) List(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	where, args := buildFilter(userID, filter)

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ` + where + `
		ORDER BY tx_date DESC, created_at DESC
	`
	if filter.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + strconv.Itoa(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Count returns the number of transactions matching the filter
func (r *transactionRepository) Count(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) (int, error) {
	where, args := buildFilter(userID, filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// SumByType sums amounts of the given type with dates in [from, to]
func (r *transactionRepository) SumByType(ctx context.Context, userID uuid.UUID, txType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND tx_type = $2 AND tx_date BETWEEN $3 AND $4
	`

	var sumStr string
	err := r.db.QueryRowContext(ctx, query, userID, string(txType), from, to).Scan(&sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}

	sum, err := decimal.NewFromString(sumStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse transaction sum: %w", err)
	}

	return sum, nil
}

// SumByCategory sums amounts of the given type per category, largest first
func (r *transactionRepository) SumByCategory(ctx context.Context, userID uuid.UUID, txType domain.TransactionType, from, to time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT category_name, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND tx_type = $2 AND tx_date BETWEEN $3 AND $4
		GROUP BY category_name
		ORDER BY 2 DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(txType), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions by category: %w", err)
	}
	defer rows.Close()

	totals := make([]domain.CategoryTotal, 0)
	for rows.Next() {
		var t domain.CategoryTotal
		var totalStr string
		if err := rows.Scan(&t.CategoryName, &totalStr); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		t.Total, err = decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse category total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	return totals, nil
}

// buildFilter assembles the WHERE clause shared by List and Count
func buildFilter(userID uuid.UUID, filter domain.TransactionFilter) (string, []interface{}) {
	clauses := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		clauses = append(clauses, fmt.Sprintf("tx_type = $%d", len(args)))
	}
	if filter.CategoryName != "" {
		args = append(args, filter.CategoryName)
		clauses = append(clauses, fmt.Sprintf("category_name = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("tx_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("tx_date <= $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Type,
		&tx.CategoryName,
		&tx.Description,
		&amountStr,
		&tx.Date,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
	}

	return &tx, nil
}
