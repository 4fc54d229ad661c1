package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/budget"
)

type budgetRequest struct {
	CategoryName   string `json:"category_name" binding:"required"`
	BudgetAmount   string `json:"budget_amount" binding:"required"`
	Frequency      string `json:"frequency" binding:"required,frequency"`
	PeriodStart    string `json:"period_start" binding:"required"`
	AlertThreshold int    `json:"alert_threshold" binding:"omitempty,min=1,max=100"`
}

type budgetResponse struct {
	ID             string `json:"id"`
	CategoryName   string `json:"category_name"`
	BudgetAmount   string `json:"budget_amount"`
	AmountSpent    string `json:"amount_spent"`
	PercentUsed    string `json:"percent_used"`
	Frequency      string `json:"frequency"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	AlertThreshold int    `json:"alert_threshold"`
	CreatedAt      string `json:"created_at"`
}

func toBudgetResponse(b *domain.Budget) budgetResponse {
	return budgetResponse{
		ID:             b.ID.String(),
		CategoryName:   b.CategoryName,
		BudgetAmount:   b.BudgetAmount.StringFixed(2),
		AmountSpent:    b.AmountSpent.StringFixed(2),
		PercentUsed:    b.PercentUsed().Round(1).String(),
		Frequency:      string(b.Frequency),
		PeriodStart:    b.PeriodStart.Format(dateLayout),
		PeriodEnd:      b.PeriodEnd.Format(dateLayout),
		AlertThreshold: b.AlertThreshold,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) createBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.BudgetAmount)
	if err != nil {
		badRequest(c, "invalid budget_amount format")
		return
	}
	start, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		badRequest(c, "invalid period_start format, expected YYYY-MM-DD")
		return
	}

	b, err := s.BudgetService.Create(c.Request.Context(), budget.CreateBudgetInput{
		UserID:         userID(c),
		CategoryName:   req.CategoryName,
		BudgetAmount:   amount,
		Frequency:      domain.Frequency(req.Frequency),
		PeriodStart:    start,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBudgetResponse(b))
}

func (s *Server) updateBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.BudgetAmount)
	if err != nil {
		badRequest(c, "invalid budget_amount format")
		return
	}
	start, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		badRequest(c, "invalid period_start format, expected YYYY-MM-DD")
		return
	}

	b, err := s.BudgetService.Update(c.Request.Context(), budget.UpdateBudgetInput{
		UserID:         userID(c),
		ID:             id,
		CategoryName:   req.CategoryName,
		BudgetAmount:   amount,
		Frequency:      domain.Frequency(req.Frequency),
		PeriodStart:    start,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBudgetResponse(b))
}

func (s *Server) getBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := s.BudgetService.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBudgetResponse(b))
}

func (s *Server) listBudgets(c *gin.Context) {
	budgets, err := s.BudgetService.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"budgets": out})
}

func (s *Server) deleteBudget(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.BudgetService.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
