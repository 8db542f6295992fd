package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opDelete = domain.NewOperation("civilites", domain.ActionDelete)

func TestRun_PartialSuccess(t *testing.T) {
	var attempted []string
	runner := NewRunner(Options{})

	report := runner.Run(context.Background(), opDelete, []string{"u1", "u2", "u3"}, func(_ context.Context, id string) error {
		attempted = append(attempted, id)
		if id == "u2" {
			return errors.New("boom")
		}
		return nil
	})

	assert.Equal(t, []string{"u1", "u2", "u3"}, attempted, "sequential and does not abort")
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, []string{"u1", "u3"}, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, Failure{UUID: "u2", Error: "boom"}, report.Failures[0])
	assert.Equal(t, "2 élément(s) traité(s) avec succès, 1 échec(s)", report.Message)
	assert.Error(t, report.Err())
	assert.NotEmpty(t, report.RunID)
}

func TestRun_AllSucceed(t *testing.T) {
	report := NewRunner(Options{}).Run(context.Background(), opDelete, []string{"a", "b"}, func(context.Context, string) error {
		return nil
	})
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.SuccessCount)
}

func TestRun_EmptyInput(t *testing.T) {
	report := NewRunner(Options{}).Run(context.Background(), opDelete, nil, func(context.Context, string) error {
		t.Fatal("must not be called")
		return nil
	})
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, "0 élément(s) traité(s) avec succès, 0 échec(s)", report.Message)
}

func TestRun_BoundedConcurrency(t *testing.T) {
	const limit = 3
	var inFlight, peak int32
	var mu sync.Mutex

	runner := NewRunner(Options{Concurrency: limit})
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	report := runner.Run(context.Background(), opDelete, ids, func(context.Context, string) error {
		n := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	assert.Equal(t, 20, report.SuccessCount)
	assert.LessOrEqual(t, peak, int32(limit))
	assert.Equal(t, limit, runner.Concurrency())
}

func TestRun_CancelledContextReportsRemainingAsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	report := NewRunner(Options{}).Run(ctx, opDelete, []string{"u1", "u2", "u3"}, func(context.Context, string) error {
		calls++
		cancel()
		return nil
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 2, report.ErrorCount)
	assert.Equal(t, "u2", report.Failures[0].UUID)
}

func TestRun_JournalAndMetrics(t *testing.T) {
	journal := mocks.NewMockJournal()
	metrics := mocks.NewMockMetrics()
	runner := NewRunner(Options{Journal: journal, Recorder: metrics})

	report := runner.Run(context.Background(), opDelete, []string{"u1", "u2"}, func(_ context.Context, id string) error {
		if id == "u1" {
			return errors.New("refus")
		}
		return nil
	})

	require.Equal(t, 1, journal.RecordCalls)
	run, err := journal.Get(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, opDelete, run.Operation)
	assert.Equal(t, 1, run.ErrorCount)
	require.Len(t, run.Items, 2)
	assert.Equal(t, domain.ItemFailed, run.Items[0].Status)
	assert.Equal(t, "refus", run.Items[0].Error)

	assert.Equal(t, 1, metrics.BulkItems[opDelete.String()+":true"])
	assert.Equal(t, 1, metrics.BulkItems[opDelete.String()+":false"])
}

func TestRun_JournalFailureDoesNotChangeReport(t *testing.T) {
	journal := mocks.NewMockJournal()
	journal.RecordError = errors.New("disk full")

	report := NewRunner(Options{Journal: journal}).Run(context.Background(), opDelete, []string{"u1"}, func(context.Context, string) error {
		return nil
	})

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, journal.RecordCalls)
}
