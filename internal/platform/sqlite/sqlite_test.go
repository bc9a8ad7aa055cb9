package sqlite

import (
	"path/filepath"
	"testing"
)

func TestOpen_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "database", "exchange.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'exchange_rates'`).Scan(&n); err != nil {
		t.Fatalf("query schema: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exchange_rates table, got %d", n)
	}
	_ = db.Close()

	// Reopening an up-to-date database must not fail.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = db.Close() }()

	var version int
	if err := db.QueryRow(`SELECT version FROM schema_migrations`).Scan(&version); err != nil {
		t.Fatalf("query version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1, got %d", version)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`INSERT INTO exchange_rates (source_identifier, fetch_time, snapshot_json) VALUES ('2024-06-10', 0, '{}')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
}
