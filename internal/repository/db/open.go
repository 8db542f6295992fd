// Package db opens the SQLite file backing the bulk journal and applies its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a private in-memory database (tests, dry runs)
const MemoryPath = ":memory:"

// ErrEmptyPath is returned when no database path is configured.
var ErrEmptyPath = errors.New("database path is empty")

// Options tunes the journal connection / Réglages de la connexion du journal
type Options struct {
	Path        string
	BusyTimeout time.Duration
}

// dsn carries the pragmas in the connection string so that every connection
// opened by the pool gets them, not only the first one.
func (o Options) dsn() string {
	busy := o.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "trusted_schema(0)")
	if o.Path != MemoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	return o.Path + "?" + q.Encode()
}

// Open opens the database and checks it answers / Ouvre la base et vérifie qu'elle répond
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.Path == "" {
		return nil, ErrEmptyPath
	}
	if opts.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", opts.dsn())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer is enough for one run at a time, and an in-memory
	// database only exists on the connection that created it.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	slog.Debug("journal database opened", "path", opts.Path)
	return conn, nil
}
