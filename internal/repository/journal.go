// Package repository opens the local SQLite journal that records bulk runs.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/repository/db"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/repository/sqlite"
)

// Re-export common errors for convenience
var (
	ErrDup    = sqlite.ErrDup
	ErrBusy   = sqlite.ErrBusy
	ErrLocked = sqlite.ErrLocked
)

// Journal bundles the journal store with the connection that backs it.
type Journal struct {
	ports.BulkJournal
	db *sql.DB
}

// OpenJournal opens (and migrates) the journal database at path / Ouvre et migre le journal
func OpenJournal(path string) (*Journal, error) {
	database, err := db.Open(context.Background(), db.Options{Path: path})
	if err != nil {
		return nil, fmt.Errorf("journal init: %w", err)
	}

	if _, err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("journal migration: %w", err)
	}

	return &Journal{BulkJournal: sqlite.NewBulkJournal(database), db: database}, nil
}

// DB exposes the underlying connection / Expose la connexion sous-jacente
func (j *Journal) DB() *sql.DB {
	return j.db
}

// Close closes the journal database / Ferme la base du journal
func (j *Journal) Close() error {
	return j.db.Close()
}
