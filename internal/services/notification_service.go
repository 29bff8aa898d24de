package services

import (
	"context"
	"fmt"
	"strconv"

	"marketBack/internal/models"
	"marketBack/internal/notify"
)

const notificationListLimit = 50

// LiveNotifier delivers a notification to the user's open websocket, if any.
type LiveNotifier interface {
	SendToUser(userID int, n models.Notification)
}

type NotificationService struct {
	Repo   NotificationStore
	Users  UserStore
	Live   LiveNotifier
	Pusher notify.Pusher
	Logger Logger
}

// CreateNotification stores the notification and then delivers it over the
// websocket and FCM. Delivery failures are logged; the stored row stands.
func (s *NotificationService) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	created, err := s.Repo.CreateNotification(ctx, n)
	if err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	if s.Live != nil {
		s.Live.SendToUser(created.UserID, created)
	}
	if s.Pusher != nil && s.Users != nil {
		s.push(ctx, created)
	}
	return created, nil
}

func (s *NotificationService) push(ctx context.Context, n models.Notification) {
	user, err := s.Users.GetUserByID(ctx, n.UserID)
	if err != nil {
		s.logf("push: load user %d: %v", n.UserID, err)
		return
	}
	if user.FCMToken == nil || *user.FCMToken == "" {
		return
	}
	data := map[string]string{
		"type":            n.Type,
		"link":            n.Link,
		"notification_id": strconv.Itoa(n.ID),
	}
	if err := s.Pusher.Push(ctx, *user.FCMToken, n.Title, n.Message, data); err != nil {
		s.logf("push notification %d: %v", n.ID, err)
	}
}

func (s *NotificationService) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Errorf(format, args...)
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	return s.Repo.GetNotificationsByUser(ctx, userID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int) error {
	return s.Repo.MarkRead(ctx, id, userID)
}
