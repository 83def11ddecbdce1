package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RunMigrations creates the database schema. Statements are ordered and
// idempotent so they can run on every startup.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			amount TEXT NOT NULL,
			entry_currency TEXT NOT NULL DEFAULT 'EUR',
			category TEXT NOT NULL DEFAULT '',
			subcategory TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMP NOT NULL,
			due_at TIMESTAMP,
			attachment_ids TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL,
			owner_kind TEXT NOT NULL,
			name TEXT NOT NULL,
			content BLOB NOT NULL,
			size INTEGER NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_records_occurred_at ON records(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_files_owner ON files(owner_id, owner_kind)`,
		`CREATE INDEX IF NOT EXISTS idx_files_is_deleted ON files(is_deleted)`,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
