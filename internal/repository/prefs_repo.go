package repository

import (
	"database/sql"
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/models"
)

// PrefsRepository handles per-user practice preferences
type PrefsRepository struct {
	db *database.DB
}

// NewPrefsRepository creates a new preferences repository
func NewPrefsRepository(db *database.DB) *PrefsRepository {
	return &PrefsRepository{db: db}
}

// GetPreferences retrieves a user's preferences, falling back to the
// free-tier defaults when no row exists
func (r *PrefsRepository) GetPreferences(userID string) (models.PracticePreferences, error) {
	query := `
		SELECT user_id, sound, ambiance_sound, haptic_strength, low_light_mode, zen_mode
		FROM practice_preferences WHERE user_id = ?
	`
	var prefs models.PracticePreferences
	err := r.db.QueryRow(query, userID).Scan(
		&prefs.UserID,
		&prefs.Sound,
		&prefs.AmbianceSound,
		&prefs.HapticStrength,
		&prefs.LowLightMode,
		&prefs.ZenMode,
	)

	if err == sql.ErrNoRows {
		return models.DefaultPracticePreferences(userID), nil
	}
	if err != nil {
		return models.PracticePreferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// SavePreferences writes a user's preferences (update then insert)
func (r *PrefsRepository) SavePreferences(prefs models.PracticePreferences) error {
	query := `
		UPDATE practice_preferences
		SET sound = ?, ambiance_sound = ?, haptic_strength = ?, low_light_mode = ?, zen_mode = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	result, err := r.db.Exec(query, prefs.Sound, prefs.AmbianceSound, prefs.HapticStrength, prefs.LowLightMode, prefs.ZenMode, prefs.UserID)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check preference update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	query = `
		INSERT INTO practice_preferences (user_id, sound, ambiance_sound, haptic_strength, low_light_mode, zen_mode)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, prefs.UserID, prefs.Sound, prefs.AmbianceSound, prefs.HapticStrength, prefs.LowLightMode, prefs.ZenMode); err != nil {
		return fmt.Errorf("failed to insert preferences: %w", err)
	}
	return nil
}
