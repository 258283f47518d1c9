package repository

import (
	"omcounter/internal/database"
)

// SettingsRepository handles application-level key/value settings
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	query := "SELECT value FROM settings WHERE name = ?"
	err := r.db.QueryRow(query, key).Scan(&value)
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := r.db.Dialect.UpsertSetting()
	_, err := r.db.Exec(query, key, value)
	return err
}

// IsSeeded checks whether a one-time seed step has already run
func (r *SettingsRepository) IsSeeded(name string) bool {
	value, err := r.GetSetting("seeded_" + name)
	if err != nil {
		return false
	}
	return value == "true"
}

// MarkSeeded records that a one-time seed step has run
func (r *SettingsRepository) MarkSeeded(name string) error {
	return r.SetSetting("seeded_"+name, "true")
}
