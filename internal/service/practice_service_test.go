package service

import (
	"errors"
	"testing"
	"time"

	"omcounter/internal/repository"
)

func TestStreakAfterIncrement(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		lastDate string
		today    string
		expected int
	}{
		{"first ever chant", 0, "", "2026-08-31", 1},
		{"second chant same day", 4, "2026-08-31", "2026-08-31", 4},
		{"chanted yesterday", 3, "2026-08-30", "2026-08-31", 4},
		{"two day gap", 7, "2026-08-29", "2026-08-31", 1},
		{"long gap", 30, "2026-01-01", "2026-08-31", 1},
		{"yesterday across month boundary", 2, "2026-07-31", "2026-08-01", 3},
		{"yesterday across year boundary", 9, "2025-12-31", "2026-01-01", 10},
		{"malformed stored date", 5, "31/08/2026", "2026-08-31", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := streakAfterIncrement(tt.current, tt.lastDate, tt.today)
			if result != tt.expected {
				t.Errorf("streakAfterIncrement() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestStreakOnSignIn(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		lastDate string
		today    string
		expected int
	}{
		{"chanted today keeps streak", 4, "2026-08-31", "2026-08-31", 4},
		{"chanted yesterday keeps streak", 4, "2026-08-30", "2026-08-31", 4},
		{"five day gap breaks streak", 3, "2026-08-26", "2026-08-31", 0},
		{"never chanted", 0, "", "2026-08-31", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := streakOnSignIn(tt.current, tt.lastDate, tt.today)
			if result != tt.expected {
				t.Errorf("streakOnSignIn() = %d, want %d", result, tt.expected)
			}
		})
	}
}

func TestIsYesterday(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		today    string
		expected bool
	}{
		{"plain yesterday", "2026-08-30", "2026-08-31", true},
		{"same day", "2026-08-31", "2026-08-31", false},
		{"two days ago", "2026-08-29", "2026-08-31", false},
		{"tomorrow", "2026-09-01", "2026-08-31", false},
		{"empty date", "", "2026-08-31", false},
		{"malformed today", "2026-08-30", "not-a-date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := isYesterday(tt.date, tt.today); result != tt.expected {
				t.Errorf("isYesterday(%q, %q) = %v, want %v", tt.date, tt.today, result, tt.expected)
			}
		})
	}
}

func newPracticeService(t *testing.T) (*PracticeService, *repository.StatsRepository) {
	t.Helper()

	db := newTestDB(t)
	statsRepo := repository.NewStatsRepository(db)
	mantraRepo := repository.NewMantraRepository(db)
	prefsRepo := repository.NewPrefsRepository(db)
	entitlement := NewEntitlementService(statsRepo)
	seedUser(t, db, "u-1", "chanter@example.com", "Chanter")

	return NewPracticeService(statsRepo, mantraRepo, prefsRepo, entitlement, nil), statsRepo
}

func TestRecordIncrementFirstSession(t *testing.T) {
	svc, _ := newPracticeService(t)

	// Five taps on a fresh account
	for i := 0; i < 5; i++ {
		if _, err := svc.RecordIncrement("u-1", "Chanter", "Om Namah Shivaya", 1, ""); err != nil {
			t.Fatalf("RecordIncrement failed: %v", err)
		}
	}

	stats, err := svc.GetStats("u-1")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalChants != 5 {
		t.Errorf("expected totalChants 5, got %d", stats.TotalChants)
	}
	if len(stats.MantraBreakdown) != 1 || stats.MantraBreakdown[0].TotalCount != 5 {
		t.Errorf("expected single breakdown bucket of 5, got %+v", stats.MantraBreakdown)
	}
	if stats.StreakDays != 1 {
		t.Errorf("expected streak 1 on first day, got %d", stats.StreakDays)
	}
	if stats.LastChantedDate != localDate(time.Now()) {
		t.Errorf("expected lastChantedDate today, got %q", stats.LastChantedDate)
	}
}

func TestRecordIncrementKeepsTotalEqualToBreakdown(t *testing.T) {
	svc, _ := newPracticeService(t)

	increments := []struct {
		mantra string
		amount int64
	}{
		{"Om Namah Shivaya", 1},
		{"Om Mani Padme Hum", 108},
		{"Om Namah Shivaya", 21},
		{"Gayatri Mantra", 3},
	}
	for _, inc := range increments {
		if _, err := svc.RecordIncrement("u-1", "Chanter", inc.mantra, inc.amount, ""); err != nil {
			t.Fatalf("RecordIncrement(%q, %d) failed: %v", inc.mantra, inc.amount, err)
		}
	}

	stats, err := svc.GetStats("u-1")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalChants != stats.BreakdownTotal() {
		t.Errorf("totalChants %d != breakdown sum %d", stats.TotalChants, stats.BreakdownTotal())
	}
	if stats.TotalChants != 133 {
		t.Errorf("expected totalChants 133, got %d", stats.TotalChants)
	}
	if len(stats.MantraBreakdown) != 3 {
		t.Errorf("expected 3 breakdown buckets, got %d", len(stats.MantraBreakdown))
	}
}

func TestRecordIncrementRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newPracticeService(t)

	for _, amount := range []int64{0, -1, -108} {
		if _, err := svc.RecordIncrement("u-1", "Chanter", "Om Namah Shivaya", amount, ""); err == nil {
			t.Errorf("expected error for amount %d", amount)
		}
	}

	stats, err := svc.GetStats("u-1")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalChants != 0 {
		t.Errorf("rejected increments must leave no side effects, got total %d", stats.TotalChants)
	}
}

func TestListMantrasSeedsDefaults(t *testing.T) {
	svc, _ := newPracticeService(t)

	mantras, err := svc.ListMantras("u-1")
	if err != nil {
		t.Fatalf("ListMantras failed: %v", err)
	}
	if len(mantras) != len(defaultMantras) {
		t.Fatalf("expected %d seeded mantras, got %d", len(defaultMantras), len(mantras))
	}

	// Listing again must not re-seed
	again, err := svc.ListMantras("u-1")
	if err != nil {
		t.Fatalf("ListMantras failed: %v", err)
	}
	if len(again) != len(mantras) {
		t.Errorf("second list re-seeded: %d mantras", len(again))
	}
}

func TestSavePreferencesGatesPremiumOptions(t *testing.T) {
	db := newTestDB(t)
	statsRepo := repository.NewStatsRepository(db)
	prefsRepo := repository.NewPrefsRepository(db)
	mantraRepo := repository.NewMantraRepository(db)
	entitlement := NewEntitlementService(statsRepo)
	svc := NewPracticeService(statsRepo, mantraRepo, prefsRepo, entitlement, nil)
	seedUser(t, db, "u-free", "free@example.com", "Free")

	prefs, err := svc.GetPreferences("u-free")
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}

	prefs.ZenMode = true
	if err := svc.SavePreferences(prefs); !errors.Is(err, ErrUpgradeRequired) {
		t.Errorf("expected ErrUpgradeRequired for zen mode on free tier, got %v", err)
	}

	prefs.ZenMode = false
	if err := svc.SavePreferences(prefs); err != nil {
		t.Errorf("free-tier defaults must save: %v", err)
	}

	makePremium(t, db, "u-free")
	prefs.ZenMode = true
	if err := svc.SavePreferences(prefs); err != nil {
		t.Errorf("premium user must save zen mode: %v", err)
	}
}
