package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

// DefaultCategory defines one entry of the starter category set
type DefaultCategory struct {
	Name string
	Type domain.CategoryType
}

// DefaultCategories is the starter set seeded for a new user. Expense
// names are mirrored as BUDGET categories so budgets can be created
// against them right away.
var DefaultCategories = []DefaultCategory{
	{Name: "Groceries", Type: domain.CategoryTypeExpense},
	{Name: "Transport", Type: domain.CategoryTypeExpense},
	{Name: "Dining", Type: domain.CategoryTypeExpense},
	{Name: "Entertainment", Type: domain.CategoryTypeExpense},
	{Name: "Utilities", Type: domain.CategoryTypeExpense},
	{Name: "Salary", Type: domain.CategoryTypeIncome},
	{Name: "Other Income", Type: domain.CategoryTypeIncome},
	{Name: "Groceries", Type: domain.CategoryTypeBudget},
	{Name: "Transport", Type: domain.CategoryTypeBudget},
	{Name: "Dining", Type: domain.CategoryTypeBudget},
	{Name: "Entertainment", Type: domain.CategoryTypeBudget},
	{Name: "Utilities", Type: domain.CategoryTypeBudget},
}

// CategorySeeder handles seeding of the starter category set
type CategorySeeder struct {
	repo domain.CategoryRepository
}

// NewCategorySeeder creates a new CategorySeeder instance
func NewCategorySeeder(repo domain.CategoryRepository) *CategorySeeder {
	return &CategorySeeder{
		repo: repo,
	}
}

// Seed ensures every default category exists for the user. Categories
// the user already has (same name and type) are left alone, so seeding
// is idempotent and safe to re-run. It returns the number of categories
// created.
func (s *CategorySeeder) Seed(ctx context.Context, userID uuid.UUID) (int, error) {
	created := 0
	for _, def := range DefaultCategories {
		exists, err := s.repo.Exists(ctx, userID, def.Name, def.Type)
		if err != nil {
			return created, fmt.Errorf("failed to check category '%s': %w", def.Name, err)
		}
		if exists {
			continue
		}

		c := &domain.Category{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      def.Name,
			Type:      def.Type,
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return created, fmt.Errorf("failed to create category '%s': %w", def.Name, err)
		}
		created++
	}
	return created, nil
}
