// Package batch applies one operation to many UUIDs with a bounded number
// of in-flight calls, collecting per-item outcomes instead of aborting.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ItemFunc performs the operation for one UUID / Exécute l'opération pour un UUID
type ItemFunc func(ctx context.Context, uuid string) error

// Recorder receives per-item outcomes / Reçoit le résultat de chaque élément
type Recorder interface {
	RecordBulkItem(operation string, success bool)
}

// Failure is one failed item / Élément en échec
type Failure struct {
	UUID  string `json:"uuid"`
	Error string `json:"error"`
}

// Report is the outcome of a run / Résultat d'une exécution
type Report struct {
	RunID        string           `json:"run_id"`
	Operation    domain.Operation `json:"operation"`
	Total        int              `json:"total"`
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Succeeded    []string         `json:"succeeded"`
	Failures     []Failure        `json:"failures"`
	Message      string           `json:"message"`
}

// Err returns nil when every item succeeded / Retourne nil si tous les éléments ont réussi
func (r *Report) Err() error {
	if r.ErrorCount == 0 {
		return nil
	}
	return fmt.Errorf("%s: %d échec(s) sur %d", r.Operation, r.ErrorCount, r.Total)
}

// Options configures a Runner / Configure un Runner
type Options struct {
	Concurrency int // Maximum in-flight items, 1 when unset / Éléments simultanés maximum, 1 par défaut
	Journal     ports.BulkJournal
	Recorder    Recorder
}

// Runner executes bulk operations / Exécute les opérations de masse
type Runner struct {
	concurrency int
	journal     ports.BulkJournal
	recorder    Recorder
}

// NewRunner creates a runner; a concurrency of 1 processes items sequentially.
// NewRunner crée un runner ; une concurrence de 1 traite les éléments séquentiellement
func NewRunner(opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{
		concurrency: opts.Concurrency,
		journal:     opts.Journal,
		recorder:    opts.Recorder,
	}
}

// Concurrency returns the worker bound / Retourne la borne de concurrence
func (r *Runner) Concurrency() int {
	return r.concurrency
}

type outcome struct {
	attempted bool
	err       error
}

// Run applies fn to every uuid. A failing item never stops the others; a
// cancelled ctx stops scheduling and the remaining items are reported failed.
// Run applique fn à chaque uuid ; un échec n'interrompt pas les autres éléments
func (r *Runner) Run(ctx context.Context, op domain.Operation, uuids []string, fn ItemFunc) *Report {
	started := time.Now()
	outcomes := make([]outcome, len(uuids))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for i, id := range uuids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = outcome{err: err}
				return nil
			}
			outcomes[i] = outcome{attempted: true, err: fn(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{
		RunID:     uuid.NewString(),
		Operation: op,
		Total:     len(uuids),
		Succeeded: []string{},
		Failures:  []Failure{},
	}
	items := make([]domain.BulkRunItem, 0, len(uuids))

	for i, id := range uuids {
		o := outcomes[i]
		if !o.attempted && o.err == nil {
			o.err = context.Cause(ctx)
			if o.err == nil {
				o.err = context.Canceled
			}
		}

		if o.err == nil {
			report.SuccessCount++
			report.Succeeded = append(report.Succeeded, id)
			items = append(items, domain.BulkRunItem{UUID: id, Status: domain.ItemSucceeded})
		} else {
			report.ErrorCount++
			report.Failures = append(report.Failures, Failure{UUID: id, Error: o.err.Error()})
			items = append(items, domain.BulkRunItem{UUID: id, Status: domain.ItemFailed, Error: o.err.Error()})
			slog.Warn("batch: item failed", "operation", op, "uuid", id, "err", o.err)
		}

		if r.recorder != nil {
			r.recorder.RecordBulkItem(op.String(), o.err == nil)
		}
	}
	report.Message = fmt.Sprintf("%d élément(s) traité(s) avec succès, %d échec(s)", report.SuccessCount, report.ErrorCount)

	slog.Info("batch: run finished",
		"operation", op,
		"run_id", report.RunID,
		"success", report.SuccessCount,
		"errors", report.ErrorCount,
		"duration", time.Since(started))

	if r.journal != nil {
		run := &domain.BulkRun{
			ID:           report.RunID,
			Operation:    op,
			StartedAt:    started,
			FinishedAt:   time.Now(),
			SuccessCount: report.SuccessCount,
			ErrorCount:   report.ErrorCount,
			Items:        items,
		}
		// The journal uses its own context so a cancelled run is still recorded.
		if err := r.journal.Record(context.WithoutCancel(ctx), run); err != nil {
			slog.Warn("batch: journal write failed", "run_id", report.RunID, "err", err)
		}
	}

	return report
}
