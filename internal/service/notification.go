package service

import (
	"context"

	"huddleup/internal/model"
	"huddleup/internal/repository"
)

// NotificationService handles notification-related business logic.
// Clients poll GET /notifications; there is no push channel.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// GetNotifications returns the newest notifications plus the unread count.
func (s *NotificationService) GetNotifications(ctx context.Context, userID int64, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	notifications, unreadCount, err := s.notifRepo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

// MarkAsRead marks specific notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID int64, notificationIDs []int64) error {
	return s.notifRepo.MarkAsRead(ctx, userID, notificationIDs)
}

// MarkAllAsRead marks all notifications for a user as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

// CreateNotification records a notification for userID about an action by
// actorID. Self-notifications are dropped. Called by the activity workers.
func (s *NotificationService) CreateNotification(ctx context.Context, userID, actorID int64, notifType string, commentID *int64) error {
	if userID == actorID {
		return nil
	}
	return s.notifRepo.Create(ctx, userID, actorID, notifType, commentID)
}
