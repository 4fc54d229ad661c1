package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

const goalColumns = `id, user_id, name, target_amount, saved_amount, deadline, created_at, updated_at`

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var deadline interface{}
	if g.Deadline != nil {
		deadline = *g.Deadline
	}

	_, err := r.db.ExecContext(ctx, query,
		g.ID,
		g.UserID,
		g.Name,
		g.TargetAmount.String(),
		g.SavedAmount.String(),
		deadline,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// GetByID retrieves a goal owned by the given user
func (r *goalRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE id = $1 AND user_id = $2
	`

	g, err := scanGoal(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal by ID: %w", err)
	}

	return g, nil
}

// Delete removes a goal owned by the given user
func (r *goalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return checkAffected(res)
}

// List retrieves all goals for a user
func (r *goalRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*domain.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// ApplyContribution adds amount to the saved counter atomically and
// returns the pre- and post-image, mirroring budget ApplyDelta.
func (r *goalRepository) ApplyContribution(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		UPDATE goals
		SET saved_amount = saved_amount + $1, updated_at = now()
		WHERE id = $2
		RETURNING saved_amount - $1, saved_amount
	`

	var oldStr, newStr string
	err := r.db.QueryRowContext(ctx, query, amount.String(), id).Scan(&oldStr, &newStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to apply goal contribution: %w", err)
	}

	oldSaved, err := decimal.NewFromString(oldStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse previous saved_amount: %w", err)
	}
	newSaved, err := decimal.NewFromString(newStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to parse saved_amount: %w", err)
	}

	return oldSaved, newSaved, nil
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var g domain.Goal
	var targetStr, savedStr string
	var deadline sql.NullTime

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&targetStr,
		&savedStr,
		&deadline,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		d := deadline.Time
		g.Deadline = &d
	}

	g.TargetAmount, err = decimal.NewFromString(targetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target_amount: %w", err)
	}
	g.SavedAmount, err = decimal.NewFromString(savedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse saved_amount: %w", err)
	}

	return &g, nil
}
