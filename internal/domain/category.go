package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CategoryType scopes a category name to the kind of entity it labels
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "EXPENSE"
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeGoal    CategoryType = "GOAL"
	CategoryTypeBudget  CategoryType = "BUDGET"
)

// Valid reports whether the category type is one of the supported scopes
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeExpense, CategoryTypeIncome, CategoryTypeGoal, CategoryTypeBudget:
		return true
	}
	return false
}

// Category represents a per-user named category. Names are unique per
// user and type, and matched exactly (case-sensitive, whitespace-sensitive)
// everywhere they are referenced.
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Type      CategoryType
	CreatedAt time.Time
}

// Validate ensures the category adheres to domain rules
func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.New("category name cannot be empty")
	}
	if !c.Type.Valid() {
		return errors.New("category type must be EXPENSE, INCOME, GOAL or BUDGET")
	}
	return nil
}
