package repositories

import (
	"context"
	"database/sql"
	"time"

	"marketBack/internal/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.CreatedAt = time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO notifications (user_id, type, title, message, link, is_read, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.Link, false, n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = int(id)
	return n, nil
}

// GetNotificationsByUser returns the newest notifications first.
func (r *NotificationRepository) GetNotificationsByUser(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, type, title, message, link, is_read, created_at
        FROM notifications
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	var count int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return models.ErrNotificationNotFound
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
	return err
}
