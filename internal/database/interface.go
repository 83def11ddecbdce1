package database

import (
	"context"
	"database/sql"
)

// DBTX is an interface that both *sql.DB and *sql.Tx implement.
// This allows repositories to work with either the database or a
// transaction, which the bin subsystem relies on to keep tombstone and
// reference-list writes atomic.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ensure types implement the interface at compile time.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
