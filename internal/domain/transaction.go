package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "EXPENSE"
	TransactionTypeIncome  TransactionType = "INCOME"
)

// Valid reports whether the transaction type is supported
func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// CategoryType returns the category scope a transaction of this type is
// validated against.
func (t TransactionType) CategoryType() CategoryType {
	if t == TransactionTypeIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// Transaction represents a recorded expense or income entry
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Type         TransactionType
	CategoryName string
	Description  string
	Amount       decimal.Decimal // ABSOLUTE VALUE (always positive)
	Date         time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return errors.New("transaction type must be EXPENSE or INCOME")
	}
	if t.CategoryName == "" {
		return errors.New("transaction category name cannot be empty")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}
	if t.Date.IsZero() {
		return errors.New("transaction date cannot be empty")
	}
	return nil
}
