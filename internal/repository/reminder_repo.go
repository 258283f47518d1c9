package repository

import (
	"database/sql"
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/models"
)

// ReminderRepository handles reminder settings and in-app notifications
type ReminderRepository struct {
	db *database.DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// GetSettings retrieves a user's reminder settings, or nil if unset
func (r *ReminderRepository) GetSettings(userID string) (*models.ReminderSettings, error) {
	query := `
		SELECT user_id, enabled, time_of_day, email_enabled, last_fired_minute, last_fired_date, updated_at
		FROM reminder_settings WHERE user_id = ?
	`
	settings := &models.ReminderSettings{}
	err := r.db.QueryRow(query, userID).Scan(
		&settings.UserID,
		&settings.Enabled,
		&settings.TimeOfDay,
		&settings.EmailEnabled,
		&settings.LastFiredMinute,
		&settings.LastFiredDate,
		&settings.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder settings: %w", err)
	}

	return settings, nil
}

// SaveSettings writes reminder settings (update then insert)
func (r *ReminderRepository) SaveSettings(settings *models.ReminderSettings) error {
	query := `
		UPDATE reminder_settings
		SET enabled = ?, time_of_day = ?, email_enabled = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	result, err := r.db.Exec(query, settings.Enabled, settings.TimeOfDay, settings.EmailEnabled, settings.UserID)
	if err != nil {
		return fmt.Errorf("failed to update reminder settings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reminder update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	query = "INSERT INTO reminder_settings (user_id, enabled, time_of_day, email_enabled) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, settings.UserID, settings.Enabled, settings.TimeOfDay, settings.EmailEnabled); err != nil {
		return fmt.Errorf("failed to insert reminder settings: %w", err)
	}
	return nil
}

// ListDue retrieves enabled reminders configured for the given "HH:MM".
// The caller filters out reminders that already fired this minute.
func (r *ReminderRepository) ListDue(timeOfDay string) ([]models.ReminderSettings, error) {
	query := `
		SELECT user_id, enabled, time_of_day, email_enabled, last_fired_minute, last_fired_date, updated_at
		FROM reminder_settings
		WHERE enabled = ? AND time_of_day = ?
	`
	rows, err := r.db.Query(query, true, timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	var due []models.ReminderSettings
	for rows.Next() {
		var settings models.ReminderSettings
		if err := rows.Scan(
			&settings.UserID,
			&settings.Enabled,
			&settings.TimeOfDay,
			&settings.EmailEnabled,
			&settings.LastFiredMinute,
			&settings.LastFiredDate,
			&settings.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		due = append(due, settings)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return due, nil
}

// MarkFired records that a reminder fired during the given minute
func (r *ReminderRepository) MarkFired(userID, timeOfDay, date string) error {
	query := "UPDATE reminder_settings SET last_fired_minute = ?, last_fired_date = ? WHERE user_id = ?"
	_, err := r.db.Exec(query, timeOfDay, date, userID)
	if err != nil {
		return fmt.Errorf("failed to mark reminder fired: %w", err)
	}
	return nil
}

// CreateNotification inserts an in-app notification
func (r *ReminderRepository) CreateNotification(userID, kind, message string) error {
	query := "INSERT INTO notifications (user_id, kind, message) VALUES (?, ?, ?)"
	_, err := r.db.Exec(query, userID, kind, message)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListUnreadNotifications retrieves unread notifications, newest first
func (r *ReminderRepository) ListUnreadNotifications(userID string) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, kind, message, is_read, created_at
		FROM notifications WHERE user_id = ? AND is_read = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationsRead marks all of a user's notifications read
func (r *ReminderRepository) MarkNotificationsRead(userID string) error {
	query := "UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?"
	_, err := r.db.Exec(query, true, userID, false)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
