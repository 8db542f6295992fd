package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

func setupJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory journal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func sampleRun(id string, started time.Time) *domain.BulkRun {
	return &domain.BulkRun{
		ID:           id,
		Operation:    domain.NewOperation("civilites", domain.ActionDelete),
		StartedAt:    started,
		FinishedAt:   started.Add(1500 * time.Millisecond),
		SuccessCount: 2,
		ErrorCount:   1,
		Items: []domain.BulkRunItem{
			{UUID: "a", Status: domain.ItemSucceeded},
			{UUID: "b", Status: domain.ItemFailed, Error: "DELETE /civilites/b: 404 Not Found"},
			{UUID: "c", Status: domain.ItemSucceeded},
		},
	}
}

func TestJournal_RecordAndGet(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	started := time.UnixMilli(time.Now().UnixMilli())

	if err := journal.Record(ctx, sampleRun("run-1", started)); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	var count int
	if err := journal.DB().QueryRow("SELECT COUNT(*) FROM bulk_run_items").Scan(&count); err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 items in database, got %d", count)
	}

	run, err := journal.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if run.Operation != "civilites:delete" {
		t.Errorf("Expected operation civilites:delete, got %s", run.Operation)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("Expected started_at %v, got %v", started, run.StartedAt)
	}
	if run.Duration() != 1500*time.Millisecond {
		t.Errorf("Expected duration 1.5s, got %v", run.Duration())
	}
	if run.SuccessCount != 2 || run.ErrorCount != 1 {
		t.Errorf("Unexpected counters: %d/%d", run.SuccessCount, run.ErrorCount)
	}
	if len(run.Items) != 3 || run.Items[1].UUID != "b" || run.Items[1].Error == "" {
		t.Errorf("Items not restored in order: %+v", run.Items)
	}
}

func TestJournal_RecordInvalid(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()

	if err := journal.Record(ctx, nil); err == nil {
		t.Error("Expected error when recording nil run")
	}
	if err := journal.Record(ctx, &domain.BulkRun{}); err == nil {
		t.Error("Expected error when recording run without id")
	}

	run := sampleRun("dup", time.Now())
	if err := journal.Record(ctx, run); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	err := journal.Record(ctx, run)
	if !errors.Is(err, ErrDup) {
		t.Errorf("Expected ErrDup on duplicate id, got %v", err)
	}
}

func TestJournal_GetNotFound(t *testing.T) {
	journal := setupJournal(t)

	_, err := journal.Get(context.Background(), "absent")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	_, err = journal.FailedUUIDs(context.Background(), "absent")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Expected ErrNotFound from FailedUUIDs, got %v", err)
	}
}

func TestJournal_List(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, id := range []string{"old", "middle", "recent"} {
		if err := journal.Record(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Failed to record run %s: %v", id, err)
		}
	}

	runs, err := journal.List(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "recent" || runs[1].ID != "middle" {
		t.Errorf("Expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Items != nil {
		t.Errorf("List should not load items")
	}

	all, err := journal.List(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs with default limit: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 runs with default limit, got %d", len(all))
	}
}

func TestJournal_FailedUUIDs(t *testing.T) {
	journal := setupJournal(t)
	ctx := context.Background()

	if err := journal.Record(ctx, sampleRun("run-f", time.Now())); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	failed, err := journal.FailedUUIDs(ctx, "run-f")
	if err != nil {
		t.Fatalf("Failed to get failed uuids: %v", err)
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("Expected [b], got %v", failed)
	}

	clean := sampleRun("run-ok", time.Now())
	clean.Items = []domain.BulkRunItem{{UUID: "x", Status: domain.ItemSucceeded}}
	if err := journal.Record(ctx, clean); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	failed, err = journal.FailedUUIDs(ctx, "run-ok")
	if err != nil {
		t.Fatalf("Failed to get failed uuids: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("Expected no failed uuid, got %v", failed)
	}
}

func TestOpenJournal_FileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "backoffice.db")

	journal, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("Failed to open journal file: %v", err)
	}
	if err := journal.Record(context.Background(), sampleRun("persisted", time.Now())); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	journal.Close()

	// Migrations are idempotent on an existing file
	reopened, err := OpenJournal(path)
	if err != nil {
		t.Fatalf("Failed to reopen journal: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(context.Background(), "persisted"); err != nil {
		t.Errorf("Expected persisted run, got %v", err)
	}
}

func TestOpenJournal_EmptyPath(t *testing.T) {
	if _, err := OpenJournal(""); err == nil {
		t.Error("Expected error for empty journal path")
	}
}
