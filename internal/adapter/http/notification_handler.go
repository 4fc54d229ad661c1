package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

type notificationResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	return notificationResponse{
		ID:          n.ID.String(),
		Title:       string(n.Title),
		Message:     n.Message,
		ReferenceID: n.ReferenceID.String(),
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := s.NotificationService.List(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]notificationResponse, 0, len(result.Items))
	for _, n := range result.Items {
		out = append(out, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": out,
		"unread":        result.Unread,
	})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.NotificationService.MarkRead(c.Request.Context(), userID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	if err := s.NotificationService.MarkAllRead(c.Request.Context(), userID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
