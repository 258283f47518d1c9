package service

import (
	"fmt"
	"log"
	"time"

	"omcounter/internal/models"
	"omcounter/internal/repository"
	"omcounter/internal/validation"

	"github.com/google/uuid"
)

// Mantras every new library starts with
var defaultMantras = []models.Mantra{
	{Text: "Om Namah Shivaya", Meaning: "I bow to Shiva, the inner Self", TargetCount: 108},
	{Text: "Om Mani Padme Hum", Meaning: "The jewel in the lotus", TargetCount: 108},
}

// PracticeService records chant increments and owns the personal
// practice ledger: totals, per-mantra breakdown and the streak.
type PracticeService struct {
	statsRepo   *repository.StatsRepository
	mantraRepo  *repository.MantraRepository
	prefsRepo   *repository.PrefsRepository
	entitlement *EntitlementService
	groups      *GroupService
}

// NewPracticeService creates a new practice service
func NewPracticeService(statsRepo *repository.StatsRepository, mantraRepo *repository.MantraRepository, prefsRepo *repository.PrefsRepository, entitlement *EntitlementService, groups *GroupService) *PracticeService {
	return &PracticeService{
		statsRepo:   statsRepo,
		mantraRepo:  mantraRepo,
		prefsRepo:   prefsRepo,
		entitlement: entitlement,
		groups:      groups,
	}
}

// RecordIncrement commits a chant count of amount for mantraText.
// Personal stats always take the increment. When groupID is set the
// same amount is additionally charged to that group's pooled counter;
// a group write failure is logged, the personal commit stands.
func (s *PracticeService) RecordIncrement(userID, userName, mantraText string, amount int64, groupID string) (*models.UserStats, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateMantraText(mantraText); err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.EnsureStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	today := localDate(time.Now())
	stats.AddToBreakdown(mantraText, amount)
	stats.TotalChants += amount
	stats.StreakDays = streakAfterIncrement(stats.StreakDays, stats.LastChantedDate, today)
	stats.LastChantedDate = today

	if err := s.statsRepo.SaveStats(stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	if groupID != "" && s.groups != nil {
		if _, err := s.groups.RecordGroupIncrement(groupID, userID, userName, amount); err != nil {
			log.Printf("Warning: group increment failed for group %s user %s: %v", groupID, userID, err)
		}
	}

	return stats, nil
}

// GetStats returns the user's practice stats, creating the zero-default
// row on first access
func (s *PracticeService) GetStats(userID string) (*models.UserStats, error) {
	stats, err := s.statsRepo.EnsureStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return stats, nil
}

// ListMantras returns the user's mantra library, seeding the defaults
// on first use
func (s *PracticeService) ListMantras(userID string) ([]models.PersonalMantra, error) {
	mantras, err := s.mantraRepo.ListMantras(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mantras: %w", err)
	}
	if len(mantras) > 0 {
		return mantras, nil
	}

	for _, m := range defaultMantras {
		pm := &models.PersonalMantra{
			Mantra: models.Mantra{
				ID:          uuid.New().String(),
				Text:        m.Text,
				Meaning:     m.Meaning,
				TargetCount: m.TargetCount,
			},
			UserID: userID,
		}
		if err := s.mantraRepo.CreateMantra(pm); err != nil {
			return nil, fmt.Errorf("failed to seed mantra library: %w", err)
		}
	}

	mantras, err = s.mantraRepo.ListMantras(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mantras: %w", err)
	}
	return mantras, nil
}

// AddMantra saves a mantra to the user's library
func (s *PracticeService) AddMantra(userID, text, meaning string, targetCount int) (*models.PersonalMantra, error) {
	if err := validation.ValidateMantraText(text); err != nil {
		return nil, err
	}
	if targetCount <= 0 {
		targetCount = 108
	}

	mantra := &models.PersonalMantra{
		Mantra: models.Mantra{
			ID:          uuid.New().String(),
			Text:        text,
			Meaning:     meaning,
			TargetCount: targetCount,
		},
		UserID: userID,
	}
	if err := s.mantraRepo.CreateMantra(mantra); err != nil {
		return nil, fmt.Errorf("failed to save mantra: %w", err)
	}
	return mantra, nil
}

// RemoveMantra deletes a mantra from the user's library
func (s *PracticeService) RemoveMantra(userID, mantraID string) error {
	if err := s.mantraRepo.DeleteMantra(userID, mantraID); err != nil {
		return fmt.Errorf("failed to delete mantra: %w", err)
	}
	return nil
}

// GetPreferences returns the user's practice preferences
func (s *PracticeService) GetPreferences(userID string) (models.PracticePreferences, error) {
	prefs, err := s.prefsRepo.GetPreferences(userID)
	if err != nil {
		return models.PracticePreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences persists practice preferences. Selecting any
// premium-only option requires the paid tier.
func (s *PracticeService) SavePreferences(prefs models.PracticePreferences) error {
	if prefs.RequiresPremium() {
		if err := s.entitlement.RequirePremium(prefs.UserID); err != nil {
			return err
		}
	}
	if err := s.prefsRepo.SavePreferences(prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// localDate formats t as the local calendar date
func localDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// isYesterday reports whether date is exactly one calendar day before
// today. Both are "YYYY-MM-DD" strings; malformed input is never
// yesterday.
func isYesterday(date, today string) bool {
	t, err := time.ParseInLocation("2006-01-02", today, time.Local)
	if err != nil {
		return false
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02") == date
}

// streakAfterIncrement applies the streak rule for a committed
// increment on the given date: a first-ever chant or a gap starts at 1,
// chanting again today leaves the streak alone, chanting the day after
// the last chant extends it by one.
func streakAfterIncrement(current int, lastDate, today string) int {
	switch {
	case lastDate == "":
		return 1
	case lastDate == today:
		return current
	case isYesterday(lastDate, today):
		return current + 1
	default:
		return 1
	}
}

// streakOnSignIn reconciles the streak at session start without an
// increment: if the last chant was neither today nor yesterday the
// streak is broken and drops to 0.
func streakOnSignIn(current int, lastDate, today string) int {
	if lastDate == today || isYesterday(lastDate, today) {
		return current
	}
	return 0
}
