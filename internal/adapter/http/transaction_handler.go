package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/transaction"
)

type transactionRequest struct {
	Type         string `json:"type" binding:"required,txtype"`
	CategoryName string `json:"category_name" binding:"required"`
	Description  string `json:"description"`
	Amount       string `json:"amount" binding:"required"`
	Date         string `json:"date" binding:"required"`
}

type transactionResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	CategoryName string `json:"category_name"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
	CreatedAt    string `json:"created_at"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID.String(),
		Type:         string(tx.Type),
		CategoryName: tx.CategoryName,
		Description:  tx.Description,
		Amount:       tx.Amount.StringFixed(2),
		Date:         tx.Date.Format(dateLayout),
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) createTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "invalid amount format")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(c, "invalid date format, expected YYYY-MM-DD")
		return
	}

	tx, err := s.TransactionService.Create(c.Request.Context(), transaction.CreateTransactionInput{
		UserID:       userID(c),
		Type:         domain.TransactionType(req.Type),
		CategoryName: req.CategoryName,
		Description:  req.Description,
		Amount:       amount,
		Date:         date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) updateTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "invalid amount format")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(c, "invalid date format, expected YYYY-MM-DD")
		return
	}

	tx, err := s.TransactionService.Update(c.Request.Context(), transaction.UpdateTransactionInput{
		UserID:       userID(c),
		ID:           id,
		Type:         domain.TransactionType(req.Type),
		CategoryName: req.CategoryName,
		Description:  req.Description,
		Amount:       amount,
		Date:         date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) getTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := s.TransactionService.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) listTransactions(c *gin.Context) {
	filter, ok := parseTransactionFilter(c)
	if !ok {
		return
	}

	result, err := s.TransactionService.List(c.Request.Context(), userID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(result.Items))
	for _, tx := range result.Items {
		out = append(out, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": out,
		"total":        result.Total,
	})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.TransactionService.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseTransactionFilter reads the list query parameters; it reports
// parse errors itself.
func parseTransactionFilter(c *gin.Context) (domain.TransactionFilter, bool) {
	var filter domain.TransactionFilter

	if raw := c.Query("type"); raw != "" {
		txType := domain.TransactionType(raw)
		if !txType.Valid() {
			badRequest(c, "invalid type filter")
			return filter, false
		}
		filter.Type = txType
	}
	filter.CategoryName = c.Query("category")

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "invalid from date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, "invalid to date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.To = &to
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if filter.Limit <= 0 {
		badRequest(c, "limit must be positive")
		return filter, false
	}
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if filter.Offset < 0 {
		badRequest(c, "offset must be non-negative")
		return filter, false
	}

	return filter, true
}
