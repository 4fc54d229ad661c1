package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency represents the length of a budget window
type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// DefaultAlertThreshold is the warning line applied when a budget is
// created without an explicit threshold.
const DefaultAlertThreshold = 80

// PeriodEnd derives the inclusive end of a budget window from its start.
// The end is fixed at creation/update time and is never recomputed by the
// consumption tracker.
func (f Frequency) PeriodEnd(start time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return start.AddDate(0, 1, 0)
	case FrequencyYearly:
		return start.AddDate(1, 0, 0)
	}
	return start
}

// Valid reports whether the frequency is one of the supported windows
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Alert represents a threshold crossing detected on a spend increase
type Alert string

const (
	AlertNone     Alert = ""
	AlertWarning  Alert = "WARNING"
	AlertExceeded Alert = "EXCEEDED"
)

// Budget represents a per-user, per-category spending envelope with an
// inclusive time window and a cumulative spent counter.
type Budget struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CategoryName string // matched exactly (case-sensitive) against expense categories
	BudgetAmount decimal.Decimal
	// AmountSpent is the cumulative signed sum of matching expense deltas.
	// It is mutated only through BudgetRepository.ApplyDelta and may
	// legitimately go negative; no floor is enforced.
	AmountSpent    decimal.Decimal
	Frequency      Frequency
	PeriodStart    time.Time
	PeriodEnd      time.Time
	AlertThreshold int // percent of BudgetAmount, 1-100
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate ensures the budget adheres to domain rules
// Returns an error if validation fails
func (b *Budget) Validate() error {
	if b.CategoryName == "" {
		return errors.New("budget category name cannot be empty")
	}
	if b.BudgetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("budget amount must be positive")
	}
	if !b.Frequency.Valid() {
		return errors.New("budget frequency must be WEEKLY, MONTHLY or YEARLY")
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return errors.New("alert threshold must be between 1 and 100")
	}
	if b.PeriodEnd.Before(b.PeriodStart) {
		return errors.New("budget period end cannot precede period start")
	}
	return nil
}

// WarningLimit returns the absolute spend at which the budget is considered
// nearly exhausted: BudgetAmount * AlertThreshold / 100.
func (b *Budget) WarningLimit() decimal.Decimal {
	return b.BudgetAmount.
		Mul(decimal.NewFromInt(int64(b.AlertThreshold))).
		Div(decimal.NewFromInt(100))
}

// Crossing evaluates the two ordered threshold checks for a spend increase
// from oldSpent to newSpent.
//
// Exceeded fires when the spend moves from at-or-below the envelope limit
// to above it. Warning fires only if exceeded did not, when the spend
// enters the [warning limit, budget amount] band from below. The two are
// mutually exclusive in a single call: exceeding implies the new spend is
// above the budget amount, which is outside the warning band.
//
// Crossing never fires for decreases; callers must only consult it when
// the applied delta is positive.
func (b *Budget) Crossing(oldSpent, newSpent decimal.Decimal) Alert {
	if oldSpent.LessThanOrEqual(b.BudgetAmount) && newSpent.GreaterThan(b.BudgetAmount) {
		return AlertExceeded
	}
	warn := b.WarningLimit()
	if oldSpent.LessThan(warn) &&
		newSpent.GreaterThanOrEqual(warn) &&
		newSpent.LessThanOrEqual(b.BudgetAmount) {
		return AlertWarning
	}
	return AlertNone
}

// PercentUsed returns AmountSpent as a percentage of BudgetAmount
func (b *Budget) PercentUsed() decimal.Decimal {
	if b.BudgetAmount.IsZero() {
		return decimal.Zero
	}
	return b.AmountSpent.Div(b.BudgetAmount).Mul(decimal.NewFromInt(100))
}
