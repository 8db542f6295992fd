package mocks

import (
	"fmt"
	"sync"
	"time"
)

// MockMetrics is a mock implementation of metrics recorder for testing
type MockMetrics struct {
	mu sync.Mutex

	APIRequests     map[string]int // "METHOD resource status" -> count
	ThrottleWaits   int
	Validations     map[string]int // "entity:valid" -> count
	FailOpens       map[string]int // "entity:check" -> count
	NormalizeShapes map[string]int // "resource:shape" -> count
	BulkItems       map[string]int // "operation:success" -> count
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		APIRequests:     make(map[string]int),
		Validations:     make(map[string]int),
		FailOpens:       make(map[string]int),
		NormalizeShapes: make(map[string]int),
		BulkItems:       make(map[string]int),
	}
}

func (m *MockMetrics) RecordAPIRequest(method, resource string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APIRequests[fmt.Sprintf("%s %s %d", method, resource, status)]++
}

func (m *MockMetrics) RecordThrottleWait(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ThrottleWaits++
}

func (m *MockMetrics) RecordValidation(entity string, valid bool, _, _, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Validations[fmt.Sprintf("%s:%t", entity, valid)]++
}

func (m *MockMetrics) RecordFailOpen(entity, check string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailOpens[entity+":"+check]++
}

func (m *MockMetrics) RecordNormalizerShape(resource, shape string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NormalizeShapes[resource+":"+shape]++
}

func (m *MockMetrics) RecordBulkItem(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BulkItems[fmt.Sprintf("%s:%t", operation, success)]++
}
