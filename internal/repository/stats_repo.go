package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/models"
)

// StatsRepository handles the profiles table: the per-user practice
// aggregate. The per-mantra breakdown is stored as a JSON array column;
// its encode/decode never leaves this file.
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats retrieves a user's stats, or nil if no profile row exists yet
func (r *StatsRepository) GetStats(userID string) (*models.UserStats, error) {
	query := `
		SELECT user_id, total_chants, streak_days, last_chanted_date, mantra_stats, is_premium
		FROM profiles WHERE user_id = ?
	`

	stats := &models.UserStats{}
	var lastChanted sql.NullString
	var breakdownJSON string
	err := r.db.QueryRow(query, userID).Scan(
		&stats.UserID,
		&stats.TotalChants,
		&stats.StreakDays,
		&lastChanted,
		&breakdownJSON,
		&stats.IsPremium,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if lastChanted.Valid {
		stats.LastChantedDate = lastChanted.String
	}
	stats.MantraBreakdown, err = decodeBreakdown(breakdownJSON)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// EnsureStats creates a zero-default profile row on first sign-in and
// returns the current stats either way
func (r *StatsRepository) EnsureStats(userID string) (*models.UserStats, error) {
	stats, err := r.GetStats(userID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		return stats, nil
	}

	query := "INSERT INTO profiles (user_id, total_chants, streak_days, mantra_stats) VALUES (?, 0, 0, '[]')"
	if _, err := r.db.Exec(query, userID); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &models.UserStats{UserID: userID, MantraBreakdown: []models.MantraStat{}}, nil
}

// SaveStats writes the full aggregate back. The totalChants-equals-sum
// invariant is re-derived here so no caller can persist a drifted total.
func (r *StatsRepository) SaveStats(stats *models.UserStats) error {
	stats.TotalChants = stats.BreakdownTotal()

	breakdownJSON, err := encodeBreakdown(stats.MantraBreakdown)
	if err != nil {
		return err
	}

	var lastChanted interface{}
	if stats.LastChantedDate != "" {
		lastChanted = stats.LastChantedDate
	}

	query := `
		UPDATE profiles
		SET total_chants = ?, streak_days = ?, last_chanted_date = ?, mantra_stats = ?, is_premium = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	_, err = r.db.Exec(query, stats.TotalChants, stats.StreakDays, lastChanted, breakdownJSON, stats.IsPremium, stats.UserID)
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// SetPremium flips the entitlement flag. The profile row must already
// exist; flipping a missing row is reported, not swallowed.
func (r *StatsRepository) SetPremium(userID string, premium bool) error {
	query := "UPDATE profiles SET is_premium = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?"
	result, err := r.db.Exec(query, premium, userID)
	if err != nil {
		return fmt.Errorf("failed to set premium: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to set premium: no profile for user %s", userID)
	}
	return nil
}

func encodeBreakdown(breakdown []models.MantraStat) (string, error) {
	if breakdown == nil {
		breakdown = []models.MantraStat{}
	}
	data, err := json.Marshal(breakdown)
	if err != nil {
		return "", fmt.Errorf("failed to encode mantra breakdown: %w", err)
	}
	return string(data), nil
}

func decodeBreakdown(raw string) ([]models.MantraStat, error) {
	if raw == "" {
		return []models.MantraStat{}, nil
	}
	var breakdown []models.MantraStat
	if err := json.Unmarshal([]byte(raw), &breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode mantra breakdown: %w", err)
	}
	if breakdown == nil {
		breakdown = []models.MantraStat{}
	}
	return breakdown, nil
}
