package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// uniqueViolation is the PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

// categoryRepository implements domain.CategoryRepository
type categoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

// Create creates a new category; a duplicate (user, name, type) triple
// maps to domain.ErrAlreadyExists.
func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, category_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		string(c.Type),
		c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Delete removes a category owned by the given user
func (r *categoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return checkAffected(res)
}

// List retrieves the user's categories, optionally filtered by type
func (r *categoryRepository) List(ctx context.Context, userID uuid.UUID, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	query := `
		SELECT id, user_id, name, category_type, created_at
		FROM categories
		WHERE user_id = $1 AND ($2 = '' OR category_type = $2)
		ORDER BY category_type, name
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(typeFilter))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// Exists reports whether a category with the exact name and type exists.
// Matching is case-sensitive by construction: name is compared with = on a
// text column, no normalization.
func (r *categoryRepository) Exists(ctx context.Context, userID uuid.UUID, name string, categoryType domain.CategoryType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = $1 AND name = $2 AND category_type = $3
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, name, string(categoryType)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category existence: %w", err)
	}

	return exists, nil
}
