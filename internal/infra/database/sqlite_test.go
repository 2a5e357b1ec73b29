package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twin.db")

	db, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'health_records')`).Scan(&tables)
	require.NoError(t, err)
	require.Equal(t, 2, tables)

	// Reopening an existing file is idempotent.
	again, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestSQLiteUniqueViolation(t *testing.T) {
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "twin.db"))
	require.NoError(t, err)
	defer db.Close()

	insert := `INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, 'x', CURRENT_TIMESTAMP)`
	_, err = db.Exec(insert, "alex", "alex@example.com")
	require.NoError(t, err)

	_, err = db.Exec(insert, "alex", "other@example.com")
	column, ok := SQLiteUniqueViolation(err)
	require.True(t, ok)
	require.Equal(t, "users.username", column)

	_, ok = SQLiteUniqueViolation(nil)
	require.False(t, ok)
}
