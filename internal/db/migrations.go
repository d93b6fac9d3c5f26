package db

import (
	"fmt"
	"log/slog"
)

// migrations are applied in order; each runs once and is recorded in
// schema_migrations.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS registration_intents (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT,
		redirect_url TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_registration_intents_created_at ON registration_intents(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_registration_intents_email ON registration_intents(email)`,
}

// migrate runs database migrations
func (db *DB) migrate() error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		if _, err := db.Exec(migrations[i]); err != nil {
			// Ignore error if column already exists
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("migration %d failed: %w", version, err)
			}
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		slog.Debug("applied migration", "version", version)
	}

	return nil
}

// SchemaVersion returns the number of applied migrations
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}
