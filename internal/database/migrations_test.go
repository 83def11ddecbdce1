package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db))

	t.Run("creates expected tables", func(t *testing.T) {
		for _, table := range []string{"records", "files", "settings"} {
			var name string
			err := db.QueryRowContext(ctx,
				`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
			).Scan(&name)
			require.NoError(t, err, "table %s missing", table)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, db))
		require.NoError(t, RunMigrations(ctx, db))
	})
}

func TestWithTx(t *testing.T) {
	db := TestDB(t)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('k1', 'v1')`)
			return err
		})
		require.NoError(t, err)

		var value string
		require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'k1'`).Scan(&value))
		require.Equal(t, "v1", value)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('k2', 'v2')`); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		var value string
		scanErr := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'k2'`).Scan(&value)
		require.ErrorIs(t, scanErr, sql.ErrNoRows)
	})
}
