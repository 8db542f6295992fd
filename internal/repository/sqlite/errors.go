package sqlite

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrDup    = errors.New("run already journaled")   // Same run id twice / Même identifiant d'exécution
	ErrBusy   = errors.New("journal is busy")         // Another process holds the write lock
	ErrLocked = errors.New("journal table is locked") // Locked by another connection
)

// sentinels maps primary result codes and extended codes to typed errors
var sentinels = map[int]error{
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     ErrDup,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: ErrDup,
	sqlite3.SQLITE_BUSY:                  ErrBusy,
	sqlite3.SQLITE_LOCKED:                ErrLocked,
}

// handleError maps driver errors onto ports.ErrNotFound and the sentinels above,
// keeping the driver message in the chain.
// handleError traduit les erreurs du driver en erreurs typées
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}

	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	code := liteErr.Code()
	sentinel, ok := sentinels[code]
	if !ok {
		// busy/locked come with extended codes such as SQLITE_BUSY_SNAPSHOT
		sentinel, ok = sentinels[code&0xff]
	}
	if !ok {
		slog.Debug("journal sqlite error", "code", code, "error", liteErr.Error())
		return err
	}
	if sentinel != ErrDup {
		slog.Warn("journal contention", "code", code, "error", liteErr.Error())
	}
	return errors.Join(sentinel, err)
}
