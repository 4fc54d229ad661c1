package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/goal"
)

type createGoalRequest struct {
	Name         string `json:"name" binding:"required"`
	TargetAmount string `json:"target_amount" binding:"required"`
	Deadline     string `json:"deadline"`
}

type contributeGoalRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type goalResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TargetAmount string  `json:"target_amount"`
	SavedAmount  string  `json:"saved_amount"`
	Deadline     *string `json:"deadline,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toGoalResponse(g *domain.Goal) goalResponse {
	resp := goalResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		TargetAmount: g.TargetAmount.StringFixed(2),
		SavedAmount:  g.SavedAmount.StringFixed(2),
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
	}
	if g.Deadline != nil {
		deadline := g.Deadline.Format(dateLayout)
		resp.Deadline = &deadline
	}
	return resp
}

func (s *Server) createGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		badRequest(c, "invalid target_amount format")
		return
	}

	var deadline *time.Time
	if req.Deadline != "" {
		parsed, err := time.Parse(dateLayout, req.Deadline)
		if err != nil {
			badRequest(c, "invalid deadline format, expected YYYY-MM-DD")
			return
		}
		deadline = &parsed
	}

	g, err := s.GoalService.Create(c.Request.Context(), goal.CreateGoalInput{
		UserID:       userID(c),
		Name:         req.Name,
		TargetAmount: target,
		Deadline:     deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGoalResponse(g))
}

func (s *Server) contributeGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req contributeGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		badRequest(c, "invalid amount format")
		return
	}

	g, err := s.GoalService.Contribute(c.Request.Context(), userID(c), id, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGoalResponse(g))
}

func (s *Server) getGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	g, err := s.GoalService.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGoalResponse(g))
}

func (s *Server) listGoals(c *gin.Context) {
	goals, err := s.GoalService.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	c.JSON(http.StatusOK, gin.H{"goals": out})
}

func (s *Server) deleteGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.GoalService.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
