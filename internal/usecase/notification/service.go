package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pennypilot/pennypilot-backend/internal/domain"
)

const defaultPageSize = 20

// ListResult pairs a page of notifications with the unread count
type ListResult struct {
	Items  []*domain.Notification
	Unread int
}

// Service exposes the in-app notification feed
type Service struct {
	Notifications domain.NotificationRepository
}

// NewService creates a new notification Service instance
func NewService(notifications domain.NotificationRepository) *Service {
	return &Service{Notifications: notifications}
}

// List retrieves a page of the user's notifications (newest first) along
// with the current unread count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*ListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.Notifications.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &ListResult{Items: items, Unread: unread}, nil
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.Notifications.UnreadCount(ctx, userID)
}

// MarkRead flags one notification as read
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.Notifications.MarkRead(ctx, userID, id)
}

// MarkAllRead flags every notification of the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.Notifications.MarkAllRead(ctx, userID)
}
