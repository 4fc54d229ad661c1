package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

const recentTransactionLimit = 5

// BudgetStatus is one row of the dashboard's budget utilization table
type BudgetStatus struct {
	BudgetID     uuid.UUID       `json:"budget_id"`
	CategoryName string          `json:"category_name"`
	BudgetAmount decimal.Decimal `json:"budget_amount"`
	AmountSpent  decimal.Decimal `json:"amount_spent"`
	PercentUsed  decimal.Decimal `json:"percent_used"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
}

// TransactionRow is a compact transaction view for the recent-activity list
type TransactionRow struct {
	ID           uuid.UUID              `json:"id"`
	Type         domain.TransactionType `json:"type"`
	CategoryName string                 `json:"category_name"`
	Description  string                 `json:"description"`
	Amount       decimal.Decimal        `json:"amount"`
	Date         time.Time              `json:"date"`
}

// CategoryRow is one slice of the expense-by-category breakdown
type CategoryRow struct {
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

// MonthSummary aggregates one calendar month of activity for a user
type MonthSummary struct {
	Year         int              `json:"year"`
	Month        time.Month       `json:"month"`
	TotalIncome  decimal.Decimal  `json:"total_income"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	Net          decimal.Decimal  `json:"net"`
	ByCategory   []CategoryRow    `json:"by_category"`
	Budgets      []BudgetStatus   `json:"budgets"`
	Recent       []TransactionRow `json:"recent"`
}

// SummaryCache caches computed month summaries. Implementations must be
// safe to skip: a miss or failure falls through to the database.
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthSummary, bool)
	Set(ctx context.Context, userID uuid.UUID, year int, month time.Month, summary *MonthSummary)
}

// Service computes dashboard aggregations
type Service struct {
	Transactions domain.TransactionRepository
	Budgets      domain.BudgetRepository
	Cache        SummaryCache
}

// NewService creates a new dashboard Service instance. cache may be nil
// when dashboard caching is not configured.
func NewService(
	transactions domain.TransactionRepository,
	budgets domain.BudgetRepository,
	cache SummaryCache,
) *Service {
	return &Service{
		Transactions: transactions,
		Budgets:      budgets,
		Cache:        cache,
	}
}

// MonthSummary aggregates the given calendar month.
// Logic:
//  1. Serve from cache when warm
//  2. Sum income and expense totals over the inclusive month range
//  3. Break expenses down per category, largest first
//  4. Collect utilization for budgets whose window overlaps the month
//  5. Attach the most recent transactions and cache the result
func (s *Service) MonthSummary(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*MonthSummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrInvalid)
	}

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, userID, year, month); ok {
			return cached, nil
		}
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1) // inclusive last day of the month

	income, err := s.Transactions.SumByType(ctx, userID, domain.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum income: %w", err)
	}
	expense, err := s.Transactions.SumByType(ctx, userID, domain.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	totals, err := s.Transactions.SumByCategory(ctx, userID, domain.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	byCategory := make([]CategoryRow, 0, len(totals))
	for _, t := range totals {
		byCategory = append(byCategory, CategoryRow{CategoryName: t.CategoryName, Total: t.Total})
	}

	budgets, err := s.Budgets.FindOverlapping(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping budgets: %w", err)
	}
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, BudgetStatus{
			BudgetID:     b.ID,
			CategoryName: b.CategoryName,
			BudgetAmount: b.BudgetAmount,
			AmountSpent:  b.AmountSpent,
			PercentUsed:  b.PercentUsed().Round(1),
			PeriodStart:  b.PeriodStart,
			PeriodEnd:    b.PeriodEnd,
		})
	}

	recent, err := s.Transactions.List(ctx, userID, domain.TransactionFilter{Limit: recentTransactionLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	rows := make([]TransactionRow, 0, len(recent))
	for _, tx := range recent {
		rows = append(rows, TransactionRow{
			ID:           tx.ID,
			Type:         tx.Type,
			CategoryName: tx.CategoryName,
			Description:  tx.Description,
			Amount:       tx.Amount,
			Date:         tx.Date,
		})
	}

	summary := &MonthSummary{
		Year:         year,
		Month:        month,
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
		ByCategory:   byCategory,
		Budgets:      statuses,
		Recent:       rows,
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, userID, year, month, summary)
	}

	return summary, nil
}
