package service

import (
	"context"

	"firebase.google.com/go/v4/messaging"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/logger"
	"rentzy-backend/internal/repository"
)

// Pusher sends one push message. *messaging.Client satisfies it.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	pusher           Pusher
}

// NewNotificationService builds the side channel. pusher may be nil when
// push delivery is not configured; notifications still land in the inbox.
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository, pusher Pusher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pusher:           pusher,
	}
}

// Notify stores an inbox row and pushes it to the user's device. Both legs
// are best-effort: a failure is logged and swallowed so the state change
// that triggered the notification is never rolled back.
func (s *notificationService) Notify(ctx context.Context, userID int64, title, content string, ntype domain.NotificationType) {
	n := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Content: content,
		Type:    ntype,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logger.Warn("notification row write failed", "user_id", userID, "type", ntype, "error", err)
	}

	if s.pusher == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.DeviceToken == "" {
		return
	}
	_, err = s.pusher.Send(ctx, &messaging.Message{
		Token: user.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  content,
		},
		Data: map[string]string{"type": string(ntype)},
	})
	if err != nil {
		logger.Warn("push delivery failed", "user_id", userID, "error", err)
	}
}

func (s *notificationService) List(ctx context.Context, userID, page, pageSize int64) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.notificationRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int64) error {
	return s.notificationRepo.MarkAsRead(ctx, notificationID, userID)
}
