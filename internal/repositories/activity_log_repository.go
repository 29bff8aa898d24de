package repositories

import (
	"context"
	"database/sql"
	"time"

	"marketBack/internal/models"
)

type ActivityLogRepository struct {
	DB *sql.DB
}

func (r *ActivityLogRepository) LogAction(ctx context.Context, entry models.ActivityLog) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO activity_logs (user_id, action, detail, entity, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		entry.UserID, entry.Action, entry.Detail, entry.Entity, time.Now().UTC())
	return err
}

func (r *ActivityLogRepository) GetByEntity(ctx context.Context, entity string, limit int) ([]models.ActivityLog, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, user_id, action, detail, entity, created_at
        FROM activity_logs
        WHERE entity = ?
        ORDER BY id DESC
        LIMIT ?`, entity, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		var userID sql.NullInt64
		if err := rows.Scan(&l.ID, &userID, &l.Action, &l.Detail, &l.Entity, &l.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := int(userID.Int64)
			l.UserID = &id
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
