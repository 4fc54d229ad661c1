package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
	"github.com/pennypilot/pennypilot-backend/internal/usecase/category"
)

type createCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required,categorytype"`
}

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

func toCategoryResponse(cat *domain.Category) categoryResponse {
	return categoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Type:      string(cat.Type),
		CreatedAt: cat.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cat, err := s.CategoryService.Create(c.Request.Context(), category.CreateCategoryInput{
		UserID: userID(c),
		Name:   req.Name,
		Type:   domain.CategoryType(req.Type),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

// seedDefaultCategories provisions the starter category set for the
// acting user. It is idempotent: re-running creates nothing new.
func (s *Server) seedDefaultCategories(c *gin.Context) {
	created, err := s.CategorySeeder.Seed(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (s *Server) listCategories(c *gin.Context) {
	typeFilter := domain.CategoryType(c.Query("type"))

	categories, err := s.CategoryService.List(c.Request.Context(), userID(c), typeFilter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, toCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.CategoryService.Delete(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
