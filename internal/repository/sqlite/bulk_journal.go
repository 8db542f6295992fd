package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

var _ ports.BulkJournal = (*bulkJournal)(nil)

// defaultListLimit caps List when no limit is given
const defaultListLimit = 20

// execer is the part of *sql.DB and *sql.Tx the writers need
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// bulkJournal implements BulkJournal / Implémente BulkJournal
type bulkJournal struct {
	db *sql.DB
}

// NewBulkJournal creates the run journal / Crée le journal des exécutions
func NewBulkJournal(db *sql.DB) ports.BulkJournal {
	return &bulkJournal{db: db}
}

// Record stores a run and its items in one transaction / Enregistre une exécution et ses éléments
func (j *bulkJournal) Record(ctx context.Context, run *domain.BulkRun) error {
	if run == nil {
		return errors.New("the bulk run is null")
	}
	if run.ID == "" {
		return errors.New("the bulk run has no id")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return handleError(err)
	}
	defer tx.Rollback()

	if err := insertRun(ctx, tx, run); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, run); err != nil {
		return err
	}

	return handleError(tx.Commit())
}

func insertRun(ctx context.Context, db execer, run *domain.BulkRun) error {
	const query = `
    INSERT INTO bulk_runs(id, operation, started_at, finished_at, success_count, error_count)
    VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Operation.String(),
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.SuccessCount,
		run.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, handleError(err))
	}
	return nil
}

func insertItems(ctx context.Context, db execer, run *domain.BulkRun) error {
	if len(run.Items) == 0 {
		return nil
	}

	const query = `
    INSERT INTO bulk_run_items(run_id, position, uuid, status, error)
    VALUES (?, ?, ?, ?, ?)
    `
	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return handleError(err)
	}
	defer stmt.Close()

	for i, item := range run.Items {
		if _, err := stmt.ExecContext(ctx, run.ID, i, item.UUID, item.Status, item.Error); err != nil {
			return fmt.Errorf("insert item %s: %w", item.UUID, handleError(err))
		}
	}
	return nil
}

// List returns the most recent runs first, without items / Retourne les exécutions récentes, sans éléments
func (j *bulkJournal) List(ctx context.Context, limit int) ([]*domain.BulkRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	const query = `
    SELECT id, operation, started_at, finished_at, success_count, error_count
    FROM bulk_runs
    ORDER BY started_at DESC, id DESC
    LIMIT ?
    `
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, handleError(err)
	}
	defer rows.Close()

	runs := make([]*domain.BulkRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, handleError(rows.Err())
}

// Get returns a run with its items / Retourne une exécution avec ses éléments
func (j *bulkJournal) Get(ctx context.Context, id string) (*domain.BulkRun, error) {
	const query = `
    SELECT id, operation, started_at, finished_at, success_count, error_count
    FROM bulk_runs
    WHERE id = ?
    `
	run, err := scanRun(j.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := j.items(ctx, id, "")
	if err != nil {
		return nil, err
	}
	run.Items = items
	return run, nil
}

// FailedUUIDs returns the failed UUIDs in run order / Retourne les UUID en échec dans l'ordre
func (j *bulkJournal) FailedUUIDs(ctx context.Context, id string) ([]string, error) {
	var exists int
	err := j.db.QueryRowContext(ctx, `SELECT 1 FROM bulk_runs WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, handleError(err)
	}

	items, err := j.items(ctx, id, domain.ItemFailed)
	if err != nil {
		return nil, err
	}
	uuids := make([]string, len(items))
	for i, item := range items {
		uuids[i] = item.UUID
	}
	return uuids, nil
}

// items loads the items of a run, optionally filtered by status
func (j *bulkJournal) items(ctx context.Context, runID, status string) ([]domain.BulkRunItem, error) {
	const query = `
    SELECT uuid, status, error
    FROM bulk_run_items
    WHERE run_id = ? AND (? = '' OR status = ?)
    ORDER BY position
    `
	rows, err := j.db.QueryContext(ctx, query, runID, status, status)
	if err != nil {
		return nil, handleError(err)
	}
	defer rows.Close()

	items := []domain.BulkRunItem{}
	for rows.Next() {
		var item domain.BulkRunItem
		if err := rows.Scan(&item.UUID, &item.Status, &item.Error); err != nil {
			return nil, handleError(err)
		}
		items = append(items, item)
	}
	return items, handleError(rows.Err())
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.BulkRun, error) {
	var (
		run                 domain.BulkRun
		operation           string
		startedAt, finished int64
	)
	if err := s.Scan(&run.ID, &operation, &startedAt, &finished, &run.SuccessCount, &run.ErrorCount); err != nil {
		return nil, handleError(err)
	}
	run.Operation = domain.Operation(operation)
	run.StartedAt = time.UnixMilli(startedAt)
	run.FinishedAt = time.UnixMilli(finished)
	return &run, nil
}
