package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal represents a savings goal with a target amount and a cumulative
// saved counter mutated through GoalRepository.ApplyContribution.
type Goal struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	TargetAmount decimal.Decimal
	SavedAmount  decimal.Decimal
	Deadline     *time.Time // NULL when the goal is open-ended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate ensures the goal adheres to domain rules
func (g *Goal) Validate() error {
	if g.Name == "" {
		return errors.New("goal name cannot be empty")
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("goal target amount must be positive")
	}
	return nil
}

// Reached reports whether a contribution moved the saved amount across the
// target for the first time. Withdrawals never count as reaching the target.
func (g *Goal) Reached(oldSaved, newSaved decimal.Decimal) bool {
	return oldSaved.LessThan(g.TargetAmount) && newSaved.GreaterThanOrEqual(g.TargetAmount)
}
