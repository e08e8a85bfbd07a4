package service

import (
	"context"
	"fmt"
	"time"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// NotificationRepository is the app_notifications persistence
type NotificationRepository interface {
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.AppNotification, error)
	CreateNotification(ctx context.Context, n *models.AppNotification) error
	MarkNotificationRead(ctx context.Context, id int64) (*models.AppNotification, error)
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
	DeleteNotification(ctx context.Context, id int64) error
	CountUnreadNotifications(ctx context.Context) (int, error)
}

// NotificationService is the single owner of app_notifications. The HTTP
// layer exposes it under two response shapes.
type NotificationService struct {
	repo   NotificationRepository
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// FeedItem is the camelCase notification shape of /api/notifications
type FeedItem struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFeedItem projects a notification row into the feed shape
func NewFeedItem(n models.AppNotification) FeedItem {
	return FeedItem{
		ID:        n.ID,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.IsRead,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

// NewFeed projects a list of notification rows
func NewFeed(rows []models.AppNotification) []FeedItem {
	out := make([]FeedItem, len(rows))
	for i, n := range rows {
		out[i] = NewFeedItem(n)
	}
	return out
}

// CreateNotificationRequest represents a request to add a notification
type CreateNotificationRequest struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Link    *string `json:"link"`
}

func (r CreateNotificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.Type, validation.In(
			models.NotificationInfo, models.NotificationWarning,
			models.NotificationError, models.NotificationSuccess,
		).Error("must be one of info, warning, error, success")),
		validation.Field(&r.Link, validation.Length(0, 255)),
	)
}

// ListQuery filters a notification listing. Limit <= 0 means all.
type ListQuery struct {
	UnreadOnly bool
	Limit      int
}

// List returns notifications, newest first
func (s *NotificationService) List(ctx context.Context, q ListQuery) ([]models.AppNotification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.List")
	defer span.End()

	return s.repo.ListNotifications(ctx, q.UnreadOnly, q.Limit)
}

// Create validates and stores a notification. Type defaults to info.
func (s *NotificationService) Create(ctx context.Context, req *CreateNotificationRequest) (*models.AppNotification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.Create")
	defer span.End()

	if req.Type == "" {
		req.Type = models.NotificationInfo
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	n := &models.AppNotification{Message: req.Message, Type: req.Type, Link: req.Link}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	util.NotificationsCreatedTotal.WithLabelValues(n.Type).Inc()
	s.logger.Debug("Notification created", zap.Int64("notification_id", n.ID), zap.String("type", n.Type))
	return n, nil
}

// Notify creates a notification from server-side code. An empty link is
// stored as NULL.
func (s *NotificationService) Notify(ctx context.Context, notificationType, message, link string) (*models.AppNotification, error) {
	req := &CreateNotificationRequest{Message: message, Type: notificationType}
	if link != "" {
		req.Link = &link
	}
	return s.Create(ctx, req)
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*models.AppNotification, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.MarkRead")
	defer span.End()

	return s.repo.MarkNotificationRead(ctx, id)
}

// MarkAllRead flags every notification as read and reports how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.MarkAllRead")
	defer span.End()

	return s.repo.MarkAllNotificationsRead(ctx)
}

// Delete removes a notification
func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "NotificationService.Delete")
	defer span.End()

	return s.repo.DeleteNotification(ctx, id)
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "NotificationService.UnreadCount")
	defer span.End()

	return s.repo.CountUnreadNotifications(ctx)
}
