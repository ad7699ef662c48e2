package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS users (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					goal TEXT NOT NULL DEFAULT '',
					personality_mode TEXT NOT NULL DEFAULT '',
					preferred_provider TEXT NOT NULL DEFAULT '',
					api_key TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id INTEGER NOT NULL REFERENCES users(id),
					name TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					notes TEXT NOT NULL DEFAULT '',
					condition TEXT NOT NULL DEFAULT '',
					sentimental TEXT NOT NULL DEFAULT '',
					last_used TEXT NOT NULL DEFAULT '',
					space TEXT NOT NULL DEFAULT '',
					usage_frequency TEXT NOT NULL DEFAULT '',
					value_tier TEXT NOT NULL DEFAULT '',
					replaceability TEXT NOT NULL DEFAULT '',
					recommendation TEXT,
					recommendation_strategy TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_items_user ON items(user_id)`,
				`CREATE INDEX idx_items_user_category ON items(user_id, category COLLATE NOCASE)`,

				`CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add recommendation override history",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS overrides (
					id TEXT PRIMARY KEY,
					user_id INTEGER NOT NULL REFERENCES users(id),
					item_id INTEGER NOT NULL REFERENCES items(id),
					item_category TEXT NOT NULL DEFAULT '',
					ai_suggestion TEXT NOT NULL,
					user_choice TEXT NOT NULL,
					reason TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_overrides_user_created ON overrides(user_id, created_at DESC)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Add AI usage records",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS usage_records (
					id TEXT PRIMARY KEY,
					user_id INTEGER NOT NULL,
					endpoint TEXT NOT NULL,
					provider TEXT NOT NULL,
					model TEXT NOT NULL DEFAULT '',
					input_tokens INTEGER NOT NULL DEFAULT 0,
					output_tokens INTEGER NOT NULL DEFAULT 0,
					estimated_cost REAL NOT NULL DEFAULT 0,
					success BOOLEAN NOT NULL,
					used_own_key BOOLEAN NOT NULL DEFAULT 0,
					error_message TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_usage_created ON usage_records(created_at)`,
				`CREATE INDEX idx_usage_user_created ON usage_records(user_id, created_at)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
