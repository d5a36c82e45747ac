package metrics

import "sync"

// MockMetrics is a no-op implementation of Metrics that records calls for
// testing. It is safe for concurrent use.
type MockMetrics struct {
	mu sync.Mutex

	BackendReadCalls   int
	BackendWriteCalls  int
	BackendErrorCalls  int
	FlushRunCalls      int
	FlushFailureCalls  int
	LastPendingWrites  float64
	LastDegradedSheets float64
	LastStartupTime    float64
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncBackendReads() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendReadCalls++
}

func (m *MockMetrics) IncBackendWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendWriteCalls++
}

func (m *MockMetrics) IncBackendErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackendErrorCalls++
}

func (m *MockMetrics) IncFlushRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushRunCalls++
}

func (m *MockMetrics) IncFlushFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushFailureCalls++
}

func (m *MockMetrics) SetPendingWrites(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastPendingWrites = count
}

func (m *MockMetrics) SetDegradedWorksheets(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastDegradedSheets = count
}

func (m *MockMetrics) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastStartupTime = seconds
}
