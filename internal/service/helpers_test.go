package service

import (
	"path/filepath"
	"testing"

	"omcounter/internal/database"
	"omcounter/internal/repository"
)

// newTestDB opens a throwaway SQLite database with all migrations
// applied
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "service_test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

// seedUser inserts a user row directly and returns its id
func seedUser(t *testing.T, db *database.DB, id, email, name string) string {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)",
		id, email, "hash", name,
	)
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
	return id
}

// makePremium flips a user's entitlement directly
func makePremium(t *testing.T, db *database.DB, userID string) {
	t.Helper()

	statsRepo := repository.NewStatsRepository(db)
	if _, err := statsRepo.EnsureStats(userID); err != nil {
		t.Fatalf("Failed to ensure stats for %s: %v", userID, err)
	}
	if err := statsRepo.SetPremium(userID, true); err != nil {
		t.Fatalf("Failed to set premium for %s: %v", userID, err)
	}
}
