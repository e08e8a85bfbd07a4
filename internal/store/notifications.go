package store

import (
	"context"
	"fmt"
	"strings"

	"warehouse-service/internal/models"
)

// ListNotifications retrieves notifications, newest first. unreadOnly
// filters out read rows; limit <= 0 means all.
func (s *Store) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.AppNotification, error) {
	var (
		b    strings.Builder
		args []interface{}
	)
	b.WriteString("SELECT * FROM app_notifications")
	if unreadOnly {
		b.WriteString(" WHERE is_read = FALSE")
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")
	if limit > 0 {
		args = append(args, limit)
		b.WriteString(" LIMIT $1")
	}

	notifications := []models.AppNotification{}
	err := s.db.SelectContext(ctx, &notifications, b.String(), args...)
	return notifications, err
}

// CreateNotification inserts a notification row
func (s *Store) CreateNotification(ctx context.Context, n *models.AppNotification) error {
	query := `
		INSERT INTO app_notifications (message, type, is_read, link, created_at)
		VALUES ($1, $2, FALSE, $3, NOW())
		RETURNING *`

	err := s.db.GetContext(ctx, n, query, n.Message, n.Type, n.Link)
	return mapError(err)
}

// MarkNotificationRead flags one notification as read and returns it
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) (*models.AppNotification, error) {
	var n models.AppNotification
	err := s.db.GetContext(ctx, &n, "UPDATE app_notifications SET is_read = TRUE WHERE id = $1 RETURNING *", id)
	if err != nil {
		return nil, fmt.Errorf("notification %d: %w", id, mapError(err))
	}
	return &n, nil
}

// MarkAllNotificationsRead flags every unread notification as read
func (s *Store) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE app_notifications SET is_read = TRUE WHERE is_read = FALSE")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteNotification removes a notification
func (s *Store) DeleteNotification(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM app_notifications WHERE id = $1", id)
	if err != nil {
		return mapDeleteError(err)
	}
	return requireAffected(res, "notification", fmt.Sprint(id))
}

// CountUnreadNotifications returns how many notifications are unread
func (s *Store) CountUnreadNotifications(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM app_notifications WHERE is_read = FALSE")
	return n, err
}
