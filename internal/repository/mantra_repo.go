package repository

import (
	"fmt"

	"omcounter/internal/database"
	"omcounter/internal/models"
)

// MantraRepository handles a user's personal mantra library
type MantraRepository struct {
	db *database.DB
}

// NewMantraRepository creates a new mantra repository
func NewMantraRepository(db *database.DB) *MantraRepository {
	return &MantraRepository{db: db}
}

// CreateMantra adds a mantra to the user's library
func (r *MantraRepository) CreateMantra(mantra *models.PersonalMantra) error {
	query := "INSERT INTO personal_mantras (id, user_id, text, meaning, target_count) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, mantra.ID, mantra.UserID, mantra.Text, mantra.Meaning, mantra.TargetCount)
	if err != nil {
		return fmt.Errorf("failed to create mantra: %w", err)
	}
	return nil
}

// ListMantras retrieves the user's library, oldest first
func (r *MantraRepository) ListMantras(userID string) ([]models.PersonalMantra, error) {
	query := `
		SELECT id, user_id, text, meaning, target_count, created_at
		FROM personal_mantras WHERE user_id = ? ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mantras: %w", err)
	}
	defer rows.Close()

	var mantras []models.PersonalMantra
	for rows.Next() {
		var m models.PersonalMantra
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Meaning, &m.TargetCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mantra: %w", err)
		}
		mantras = append(mantras, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mantras: %w", err)
	}

	return mantras, nil
}

// CountMantras counts the user's library entries
func (r *MantraRepository) CountMantras(userID string) (int, error) {
	query := "SELECT COUNT(*) FROM personal_mantras WHERE user_id = ?"
	var count int
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mantras: %w", err)
	}
	return count, nil
}

// DeleteMantra removes a mantra from the user's library
func (r *MantraRepository) DeleteMantra(userID, mantraID string) error {
	query := "DELETE FROM personal_mantras WHERE id = ? AND user_id = ?"
	_, err := r.db.Exec(query, mantraID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete mantra: %w", err)
	}
	return nil
}
