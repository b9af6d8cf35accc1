// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "curator.db")

	db, err := New(path)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Positive(t, count)
	require.NoError(t, db.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	var again int
	require.NoError(t, reopened.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM migrations").Scan(&again))
	assert.Equal(t, count, again)
}

func TestNew_CreatesLibraryTables(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "curator.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"quality_profiles", "delay_profiles", "media_items", "media_units", "media_files", "history"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestTx_RollbackReleasesWriteLock(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "curator.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, "INSERT INTO delay_profiles (sort_order) VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = db.ExecContext(ctx, "INSERT INTO delay_profiles (sort_order) VALUES (2)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM delay_profiles").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestIsWriteQuery(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"  insert into x values (1)": true,
		"\nUPDATE x SET a = 1":       true,
		"DELETE FROM x":              true,
		"SELECT 1":                   false,
		"":                           false,
	}
	for query, want := range tests {
		assert.Equal(t, want, isWriteQuery(query), query)
	}
}

func TestPragmaQuery(t *testing.T) {
	t.Parallel()

	q := pragmaQuery()
	assert.Contains(t, q, "_pragma=journal_mode(WAL)")
	assert.Contains(t, q, "_pragma=foreign_keys(ON)")
	assert.Contains(t, q, "_pragma=busy_timeout(5000)")
}

func TestClose_Idempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "curator.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.ExecContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, errClosed)
}
