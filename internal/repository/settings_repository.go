package repository

import (
	"database/sql"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
)

// SettingsRepository provides data access methods for the setting table,
// a simple key/value store for runtime configuration such as the
// encrypted Alpha Vantage API key.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// SetSetting writes a setting value, replacing any previous value.
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := `
          INSERT INTO setting (key, value)
          VALUES (?, ?)
          ON CONFLICT(key) DO UPDATE SET value = excluded.value
      `
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}

// GetSetting retrieves a setting value by key.
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string

	err := r.db.QueryRow(`SELECT value FROM setting WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}

	return value, nil
}

// DeleteSetting removes a setting. Deleting a key that never existed is
// not an error.
func (r *SettingsRepository) DeleteSetting(key string) error {
	if _, err := r.db.Exec(`DELETE FROM setting WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
