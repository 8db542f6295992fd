package mocks

import (
	"context"
	"sync"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

// MockJournal is a mock implementation of ports.BulkJournal for testing
type MockJournal struct {
	mu sync.Mutex

	// Mock data storage
	Runs  map[string]*domain.BulkRun
	order []string

	// Mock behavior flags
	RecordError error
	ListError   error
	GetError    error

	// Call tracking
	RecordCalls int
	ListCalls   int
	GetCalls    int
}

// NewMockJournal creates a new mock journal
func NewMockJournal() *MockJournal {
	return &MockJournal{
		Runs: make(map[string]*domain.BulkRun),
	}
}

func (m *MockJournal) Record(ctx context.Context, run *domain.BulkRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordCalls++
	if m.RecordError != nil {
		return m.RecordError
	}

	m.Runs[run.ID] = run
	m.order = append(m.order, run.ID)
	return nil
}

func (m *MockJournal) List(ctx context.Context, limit int) ([]*domain.BulkRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListError != nil {
		return nil, m.ListError
	}

	runs := make([]*domain.BulkRun, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0 && (limit <= 0 || len(runs) < limit); i-- {
		summary := *m.Runs[m.order[i]]
		summary.Items = nil
		runs = append(runs, &summary)
	}
	return runs, nil
}

func (m *MockJournal) Get(ctx context.Context, id string) (*domain.BulkRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}

	run, exists := m.Runs[id]
	if !exists {
		return nil, ports.ErrNotFound
	}
	return run, nil
}

func (m *MockJournal) FailedUUIDs(ctx context.Context, id string) ([]string, error) {
	run, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var failed []string
	for _, item := range run.Items {
		if item.Status == domain.ItemFailed {
			failed = append(failed, item.UUID)
		}
	}
	return failed, nil
}
