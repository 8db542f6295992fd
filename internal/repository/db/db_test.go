package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDSN(t *testing.T) {
	file := Options{Path: "/tmp/journal.db", BusyTimeout: 2 * time.Second}.dsn()
	assert.Contains(t, file, "/tmp/journal.db?")
	assert.Contains(t, file, "busy_timeout%282000%29")
	assert.Contains(t, file, "journal_mode%28WAL%29")

	mem := Options{Path: MemoryPath}.dsn()
	assert.Contains(t, mem, "busy_timeout%285000%29", "default busy timeout")
	assert.NotContains(t, mem, "journal_mode", "WAL does not apply to memory databases")
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(t.Context(), Options{})
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	conn, err := Open(t.Context(), Options{Path: path})
	require.NoError(t, err)
	defer conn.Close()

	version, err := Migrate(conn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	// Second run is a no-op
	version, err = Migrate(conn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var fk int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var tables int
	require.NoError(t, conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('bulk_runs', 'bulk_run_items', ?)",
		migrationsTable,
	).Scan(&tables))
	assert.Equal(t, 3, tables)
}
