package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketBack/internal/models"
)

type SystemSettingsRepository struct {
	DB *sql.DB
}

// GetSetting returns the raw value of key; ok is false when the row is absent.
func (r *SystemSettingsRepository) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	err = r.DB.QueryRowContext(ctx,
		`SELECT setting_value FROM system_settings WHERE setting_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SystemSettingsRepository) GetAllSettings(ctx context.Context) ([]models.SystemSetting, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT setting_key, setting_value, updated_at FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := []models.SystemSetting{}
	for rows.Next() {
		var s models.SystemSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *SystemSettingsRepository) UpsertSetting(ctx context.Context, key, value string) (models.SystemSetting, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.SystemSetting{}, err
	}

	now := time.Now().UTC()
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM system_settings WHERE setting_key = ?`, key).Scan(&count); err != nil {
		tx.Rollback()
		return models.SystemSetting{}, err
	}

	if count > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE system_settings SET setting_value = ?, updated_at = ? WHERE setting_key = ?`, value, now, key)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO system_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)`, key, value, now)
	}
	if err != nil {
		tx.Rollback()
		return models.SystemSetting{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.SystemSetting{}, err
	}
	return models.SystemSetting{Key: key, Value: value, UpdatedAt: now}, nil
}
