package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const upsertSettingQuery = `
	INSERT INTO settings (setting_key, setting_value, last_updated)
	VALUES ($1, $2, NOW())
	ON CONFLICT (setting_key) DO UPDATE SET
		setting_value = EXCLUDED.setting_value,
		last_updated = NOW()`

// ListSettings retrieves every stored setting
func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows := []models.Setting{}
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM settings ORDER BY setting_key")
	return rows, err
}

// GetSettings retrieves the settings whose key is in keys. Keys with no row
// are simply absent from the result.
func (s *Store) GetSettings(ctx context.Context, keys []string) ([]models.Setting, error) {
	rows := []models.Setting{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM settings WHERE setting_key = ANY($1) ORDER BY setting_key", pq.Array(keys))
	return rows, err
}

// GetSetting retrieves one setting by key
func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var row models.Setting
	err := s.db.GetContext(ctx, &row, "SELECT * FROM settings WHERE setting_key = $1", key)
	if err != nil {
		return nil, fmt.Errorf("setting %q: %w", key, mapError(err))
	}
	return &row, nil
}

// UpsertSetting inserts or overwrites one setting and reports the rows touched
func (s *Store) UpsertSetting(ctx context.Context, key, value string) (int64, error) {
	res, err := s.db.ExecContext(ctx, upsertSettingQuery, key, value)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}

// UpsertSettings writes every pair in one transaction. The first failure
// rolls back all earlier writes of the call.
func (s *Store) UpsertSettings(ctx context.Context, pairs []models.Setting) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, p := range pairs {
			if _, err := tx.ExecContext(ctx, upsertSettingQuery, p.Key, p.Value); err != nil {
				return fmt.Errorf("setting %q: %w", p.Key, mapError(err))
			}
		}
		return nil
	})
}
