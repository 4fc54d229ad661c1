package category

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// CreateCategoryInput represents the input for creating a category
type CreateCategoryInput struct {
	UserID uuid.UUID
	Name   string
	Type   domain.CategoryType
}

// Service handles the per-user category directory
type Service struct {
	Categories domain.CategoryRepository
}

// NewService creates a new category Service instance
func NewService(categories domain.CategoryRepository) *Service {
	return &Service{Categories: categories}
}

// Create adds a category. Names are unique per user and type; a duplicate
// surfaces as domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	c := &domain.Category{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Name:      input.Name,
		Type:      input.Type,
		CreatedAt: time.Now(),
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalid, err)
	}

	if err := s.Categories.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// List retrieves the user's categories, optionally filtered by type
func (s *Service) List(ctx context.Context, userID uuid.UUID, typeFilter domain.CategoryType) ([]*domain.Category, error) {
	if typeFilter != "" && !typeFilter.Valid() {
		return nil, fmt.Errorf("%w: unknown category type '%s'", domain.ErrInvalid, typeFilter)
	}
	return s.Categories.List(ctx, userID, typeFilter)
}

// Delete removes a category owned by the user
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.Categories.Delete(ctx, userID, id)
}

// Exists reports whether a category with the exact name and type exists
// for the user. Matching is case- and whitespace-sensitive.
func (s *Service) Exists(ctx context.Context, userID uuid.UUID, name string, categoryType domain.CategoryType) (bool, error) {
	return s.Categories.Exists(ctx, userID, name, categoryType)
}
