package store

import (
	"context"
	"fmt"

	"nyamalink/internal/models"
)

// CreateNotification inserts a durable notification row
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at`

	return s.db.QueryRowxContext(ctx, query,
		n.UserID, n.Title, n.Message, n.Type,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

// ListNotificationsByUser retrieves a user's notifications, newest first
func (s *Store) ListNotificationsByUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100", userID)
	return notifications, err
}

// MarkNotificationRead flags one of the user's notifications as read
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2",
		id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification not found: %d", id)
	}
	return nil
}
