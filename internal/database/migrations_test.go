package database

import (
	"os"
	"path/filepath"
	"testing"
)

// TestRunMigrationsUsesDialectSubdir verifies the runner picks the DDL set
// matching the active dialect instead of whatever sits at the root.
func TestRunMigrationsUsesDialectSubdir(t *testing.T) {
	dir := t.TempDir()

	root := filepath.Join(dir, "migrations")
	if err := os.MkdirAll(filepath.Join(root, "sqlite"), 0o755); err != nil {
		t.Fatalf("Failed to create migrations dir: %v", err)
	}

	// A root-level file must be ignored once a dialect subdir exists.
	decoy := "CREATE TABLE decoy (id TEXT PRIMARY KEY);"
	if err := os.WriteFile(filepath.Join(root, "001_decoy.sql"), []byte(decoy), 0o644); err != nil {
		t.Fatalf("Failed to write decoy migration: %v", err)
	}
	wanted := `-- dialect-specific schema
CREATE TABLE journal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    body TEXT NOT NULL
);

CREATE INDEX idx_journal_body ON journal(body);
`
	if err := os.WriteFile(filepath.Join(root, "sqlite", "001_journal.sql"), []byte(wanted), 0o644); err != nil {
		t.Fatalf("Failed to write migration: %v", err)
	}

	db, err := Initialize(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(root); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	var name string
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, "journal").Scan(&name); err != nil {
		t.Errorf("Table journal not found: %v", err)
	}
	if err := db.QueryRow(query, "decoy").Scan(&name); err == nil {
		t.Error("Root-level migration ran despite dialect subdir")
	}

	// Re-running must be a no-op for already-recorded files.
	if err := db.RunMigrations(root); err != nil {
		t.Fatalf("Re-running migrations failed: %v", err)
	}
}

// TestRunMigrationsFlatDirectory keeps the pre-subdir layout working.
func TestRunMigrationsFlatDirectory(t *testing.T) {
	dir := t.TempDir()

	root := filepath.Join(dir, "migrations")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("Failed to create migrations dir: %v", err)
	}
	schema := "CREATE TABLE journal (id TEXT PRIMARY KEY);"
	if err := os.WriteFile(filepath.Join(root, "001_journal.sql"), []byte(schema), 0o644); err != nil {
		t.Fatalf("Failed to write migration: %v", err)
	}

	db, err := Initialize(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(root); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	var name string
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, "journal").Scan(&name); err != nil {
		t.Errorf("Table journal not found: %v", err)
	}
}
