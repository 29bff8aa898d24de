package repositories

import (
	"context"
	"database/sql"
	"time"

	"marketBack/internal/models"
)

type DeadLetterRepository struct {
	DB *sql.DB
}

func (r *DeadLetterRepository) SaveDeadLetter(ctx context.Context, d models.DeadLetter) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO task_dead_letters (task_id, kind, payload, attempts, last_error, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		d.TaskID, d.Kind, d.Payload, d.Attempts, d.LastError, time.Now().UTC())
	return err
}

func (r *DeadLetterRepository) CountDeadLetters(ctx context.Context, kind string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_dead_letters WHERE kind = ?`, kind).Scan(&count)
	return count, err
}
