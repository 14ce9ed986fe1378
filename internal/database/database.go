package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBPath returns the path to the single shared database
func DBPath() string {
	return filepath.Join("data", "reefcast.db")
}

// Open opens the database at dbPath, creating its directory and the cache
// schema when missing. ":memory:" opens a private in-memory database.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA synchronous=NORMAL")
	}

	if err := ensureCacheSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema ensures that the response cache table exists in the database at dbPath.
func EnsureSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database to ensure schema: %w", err)
	}
	defer db.Close()

	return ensureCacheSchema(db)
}

func ensureCacheSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS response_cache (
			cache_key TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			body BLOB NOT NULL,
			content_type TEXT,
			created_at INTEGER NOT NULL, -- unix seconds
			expires_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_response_cache_expires ON response_cache(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating response_cache table: %w", err)
	}
	return nil
}
