package database

import (
	"context"
	"database/sql"
	"testing"
)

// TestDB returns an in-memory SQLite database with the schema applied.
// The single-connection limit set in Open keeps the memory database alive
// for the lifetime of the handle.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
