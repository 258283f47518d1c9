package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"omcounter/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Users      []UserBackup       `json:"users"`
	Profiles   []ProfileBackup    `json:"profiles"`
	Groups     []GroupBackup      `json:"groups"`
	Mantras    []MantraBackup     `json:"mantras"`
	Reminders  []ReminderBackup   `json:"reminders"`
	Prefs      []PreferenceBackup `json:"preferences"`
	Payments   []PaymentBackup    `json:"payments"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	Name          string     `json:"name"`
	OAuthProvider string     `json:"oauth_provider"`
	OAuthSubject  string     `json:"oauth_subject"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProfileBackup represents a per-user practice aggregate for backup.
// MantraStats carries the raw JSON breakdown exactly as stored.
type ProfileBackup struct {
	UserID          string `json:"user_id"`
	TotalChants     int64  `json:"total_chants"`
	StreakDays      int    `json:"streak_days"`
	LastChantedDate string `json:"last_chanted_date"`
	MantraStats     string `json:"mantra_stats"`
	IsPremium       bool   `json:"is_premium"`
}

// GroupBackup represents a group record for backup. Description holds
// the versioned sub-document verbatim so a restore round-trips it
// without re-encoding. MemberIDs mirrors the membership hint index.
type GroupBackup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AdminID     string    `json:"admin_id"`
	MantraText  string    `json:"mantra_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	MemberIDs   []string  `json:"member_ids"`
}

// MantraBackup represents a personal mantra for backup
type MantraBackup struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Text        string    `json:"text"`
	Meaning     string    `json:"meaning"`
	TargetCount int       `json:"target_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReminderBackup represents reminder settings for backup
type ReminderBackup struct {
	UserID       string `json:"user_id"`
	Enabled      bool   `json:"enabled"`
	TimeOfDay    string `json:"time_of_day"`
	EmailEnabled bool   `json:"email_enabled"`
}

// PreferenceBackup represents practice preferences for backup
type PreferenceBackup struct {
	UserID         string `json:"user_id"`
	Sound          string `json:"sound"`
	AmbianceSound  string `json:"ambiance_sound"`
	HapticStrength string `json:"haptic_strength"`
	LowLightMode   bool   `json:"low_light_mode"`
	ZenMode        bool   `json:"zen_mode"`
}

// PaymentBackup represents a payment record for backup
type PaymentBackup struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ProviderOrderID   string    `json:"provider_order_id"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	AmountPaise       int64     `json:"amount_paise"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations.
// Sessions and notifications are ephemeral and are not backed up.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportProfiles(backup); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if err := s.exportGroups(backup); err != nil {
		return fmt.Errorf("failed to export groups: %w", err)
	}
	if err := s.exportMantras(backup); err != nil {
		return fmt.Errorf("failed to export mantras: %w", err)
	}
	if err := s.exportReminders(backup); err != nil {
		return fmt.Errorf("failed to export reminders: %w", err)
	}
	if err := s.exportPrefs(backup); err != nil {
		return fmt.Errorf("failed to export preferences: %w", err)
	}
	if err := s.exportPayments(backup); err != nil {
		return fmt.Errorf("failed to export payments: %w", err)
	}

	log.Printf("Exported: %d users, %d profiles, %d groups, %d mantras, %d payments",
		len(backup.Users), len(backup.Profiles), len(backup.Groups),
		len(backup.Mantras), len(backup.Payments))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importProfiles(backup.Profiles); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}
	if err := s.importGroups(backup.Groups); err != nil {
		return fmt.Errorf("failed to import groups: %w", err)
	}
	if err := s.importMantras(backup.Mantras); err != nil {
		return fmt.Errorf("failed to import mantras: %w", err)
	}
	if err := s.importReminders(backup.Reminders); err != nil {
		return fmt.Errorf("failed to import reminders: %w", err)
	}
	if err := s.importPrefs(backup.Prefs); err != nil {
		return fmt.Errorf("failed to import preferences: %w", err)
	}
	if err := s.importPayments(backup.Payments); err != nil {
		return fmt.Errorf("failed to import payments: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), last_login, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	query := "SELECT user_id, total_chants, streak_days, COALESCE(last_chanted_date, ''), mantra_stats, is_premium FROM profiles ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		if err := rows.Scan(&p.UserID, &p.TotalChants, &p.StreakDays, &p.LastChantedDate, &p.MantraStats, &p.IsPremium); err != nil {
			return err
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportGroups(backup *BackupData) error {
	query := "SELECT id, name, description, admin_id, mantra_text, created_at, updated_at FROM circles ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GroupBackup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.AdminID, &g.MantraText, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}

		memberQuery := "SELECT user_id FROM group_memberships WHERE group_id = ? ORDER BY joined_at"
		memberRows, err := s.db.Query(memberQuery, g.ID)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var userID string
			if err := memberRows.Scan(&userID); err != nil {
				memberRows.Close()
				return err
			}
			g.MemberIDs = append(g.MemberIDs, userID)
		}
		memberRows.Close()

		backup.Groups = append(backup.Groups, g)
	}
	return rows.Err()
}

func (s *BackupService) exportMantras(backup *BackupData) error {
	query := "SELECT id, user_id, text, COALESCE(meaning, ''), target_count, created_at FROM personal_mantras ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MantraBackup
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Meaning, &m.TargetCount, &m.CreatedAt); err != nil {
			return err
		}
		backup.Mantras = append(backup.Mantras, m)
	}
	return rows.Err()
}

func (s *BackupService) exportReminders(backup *BackupData) error {
	query := "SELECT user_id, enabled, time_of_day, email_enabled FROM reminder_settings ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ReminderBackup
		if err := rows.Scan(&r.UserID, &r.Enabled, &r.TimeOfDay, &r.EmailEnabled); err != nil {
			return err
		}
		backup.Reminders = append(backup.Reminders, r)
	}
	return rows.Err()
}

func (s *BackupService) exportPrefs(backup *BackupData) error {
	query := "SELECT user_id, sound, ambiance_sound, haptic_strength, low_light_mode, zen_mode FROM practice_preferences ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PreferenceBackup
		if err := rows.Scan(&p.UserID, &p.Sound, &p.AmbianceSound, &p.HapticStrength, &p.LowLightMode, &p.ZenMode); err != nil {
			return err
		}
		backup.Prefs = append(backup.Prefs, p)
	}
	return rows.Err()
}

func (s *BackupService) exportPayments(backup *BackupData) error {
	query := "SELECT id, user_id, provider_order_id, provider_payment_id, amount_paise, currency, status, created_at FROM payments ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PaymentBackup
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProviderOrderID, &p.ProviderPaymentID, &p.AmountPaise, &p.Currency, &p.Status, &p.CreatedAt); err != nil {
			return err
		}
		backup.Payments = append(backup.Payments, p)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		var lastLogin interface{}
		if u.LastLogin != nil {
			lastLogin = *u.LastLogin
		}
		query := "INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, last_login, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.OAuthProvider, u.OAuthSubject, lastLogin, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importProfiles(profiles []ProfileBackup) error {
	log.Printf("Importing %d profiles...", len(profiles))
	for _, p := range profiles {
		query := "INSERT INTO profiles (user_id, total_chants, streak_days, last_chanted_date, mantra_stats, is_premium) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, p.UserID, p.TotalChants, p.StreakDays, p.LastChantedDate, p.MantraStats, p.IsPremium)
		if err != nil {
			return fmt.Errorf("failed to import profile %s: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importGroups(groups []GroupBackup) error {
	log.Printf("Importing %d groups...", len(groups))
	for _, g := range groups {
		query := "INSERT INTO circles (id, name, description, admin_id, mantra_text, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, g.ID, g.Name, g.Description, g.AdminID, g.MantraText, g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import group %s: %w", g.ID, err)
		}

		for _, userID := range g.MemberIDs {
			memberQuery := "INSERT INTO group_memberships (group_id, user_id) VALUES (?, ?)"
			if _, err := s.db.Exec(memberQuery, g.ID, userID); err != nil {
				return fmt.Errorf("failed to import membership %s for group %s: %w", userID, g.ID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importMantras(mantras []MantraBackup) error {
	log.Printf("Importing %d mantras...", len(mantras))
	for _, m := range mantras {
		query := "INSERT INTO personal_mantras (id, user_id, text, meaning, target_count, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, m.ID, m.UserID, m.Text, m.Meaning, m.TargetCount, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import mantra %s: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importReminders(reminders []ReminderBackup) error {
	log.Printf("Importing %d reminder settings...", len(reminders))
	for _, r := range reminders {
		query := "INSERT INTO reminder_settings (user_id, enabled, time_of_day, email_enabled) VALUES (?, ?, ?, ?)"
		_, err := s.db.Exec(query, r.UserID, r.Enabled, r.TimeOfDay, r.EmailEnabled)
		if err != nil {
			return fmt.Errorf("failed to import reminder settings %s: %w", r.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importPrefs(prefs []PreferenceBackup) error {
	log.Printf("Importing %d preferences...", len(prefs))
	for _, p := range prefs {
		query := "INSERT INTO practice_preferences (user_id, sound, ambiance_sound, haptic_strength, low_light_mode, zen_mode) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, p.UserID, p.Sound, p.AmbianceSound, p.HapticStrength, p.LowLightMode, p.ZenMode)
		if err != nil {
			return fmt.Errorf("failed to import preferences %s: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importPayments(payments []PaymentBackup) error {
	log.Printf("Importing %d payments...", len(payments))
	for _, p := range payments {
		query := "INSERT INTO payments (id, user_id, provider_order_id, provider_payment_id, amount_paise, currency, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, p.ID, p.UserID, p.ProviderOrderID, p.ProviderPaymentID, p.AmountPaise, p.Currency, p.Status, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import payment %s: %w", p.ID, err)
		}
	}
	return nil
}
