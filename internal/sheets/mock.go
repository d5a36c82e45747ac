package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MockBackend is an in-memory implementation of Backend for testing.
// It is safe for concurrent use and supports simulating a backend outage.
type MockBackend struct {
	mu           sync.Mutex
	spreadsheets map[string]*MockSpreadsheet
	disconnected bool

	// Call records
	OpenCalls      int
	ReadCalls      int
	OverwriteCalls int
	AppendCalls    int
}

// NewMock creates a new mock backend with no spreadsheets.
func NewMock() *MockBackend {
	return &MockBackend{spreadsheets: make(map[string]*MockSpreadsheet)}
}

// AddSpreadsheet registers an empty spreadsheet under the given URL.
func (b *MockBackend) AddSpreadsheet(url string) *MockSpreadsheet {
	b.mu.Lock()
	defer b.mu.Unlock()
	sp := &MockSpreadsheet{backend: b, worksheets: make(map[string]*MockWorksheet)}
	b.spreadsheets[url] = sp
	return sp
}

// Disconnect makes every subsequent read and write fail until Reconnect.
func (b *MockBackend) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = true
}

// Reconnect restores the backend after a Disconnect.
func (b *MockBackend) Reconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = false
}

func (b *MockBackend) Open(ctx context.Context, url string) (Spreadsheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.OpenCalls++
	sp, ok := b.spreadsheets[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSpreadsheetDoesNotExist, url)
	}
	return sp, nil
}

// MockSpreadsheet is the in-memory document behind MockBackend.
type MockSpreadsheet struct {
	backend    *MockBackend
	worksheets map[string]*MockWorksheet
}

// Seed creates (or replaces) a worksheet with the given grid, bypassing the
// outage flag and call counters. Intended for test setup.
func (s *MockSpreadsheet) Seed(title string, grid Grid) *MockWorksheet {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	ws := &MockWorksheet{backend: s.backend, title: title, grid: grid.Clone()}
	s.worksheets[title] = ws
	return ws
}

// Rows returns a copy of the worksheet's current grid, for assertions.
func (s *MockSpreadsheet) Rows(title string) Grid {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	ws, ok := s.worksheets[title]
	if !ok {
		return nil
	}
	return ws.grid.Clone()
}

func (s *MockSpreadsheet) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	ws, ok := s.worksheets[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorksheetDoesNotExist, title)
	}
	return ws, nil
}

func (s *MockSpreadsheet) CreateWorksheet(ctx context.Context, title string, rows, cols int) (Worksheet, error) {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	if s.backend.disconnected {
		return nil, fmt.Errorf("%w: %s: backend unavailable", ErrWorksheetCreate, title)
	}
	if _, ok := s.worksheets[title]; ok {
		return nil, fmt.Errorf("%w: %s: already exists", ErrWorksheetCreate, title)
	}
	ws := &MockWorksheet{backend: s.backend, title: title}
	s.worksheets[title] = ws
	return ws, nil
}

// MockWorksheet is one in-memory tab.
type MockWorksheet struct {
	backend *MockBackend
	title   string
	grid    Grid
}

func (w *MockWorksheet) Title() string { return w.title }

func (w *MockWorksheet) ReadAll(ctx context.Context) (Grid, error) {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	w.backend.ReadCalls++
	if w.backend.disconnected {
		return nil, fmt.Errorf("%w: %s: backend unavailable", ErrWorksheetRead, w.title)
	}
	return w.grid.Clone(), nil
}

func (w *MockWorksheet) OverwriteAll(ctx context.Context, grid Grid) error {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	w.backend.OverwriteCalls++
	if w.backend.disconnected {
		return fmt.Errorf("%w: %s: backend unavailable", ErrWorksheetWrite, w.title)
	}
	w.grid = grid.Clone()
	return nil
}

func (w *MockWorksheet) Append(ctx context.Context, row []string) error {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	w.backend.AppendCalls++
	if w.backend.disconnected {
		return fmt.Errorf("%w: %s: backend unavailable", ErrWorksheetWrite, w.title)
	}
	w.grid = append(w.grid, append([]string(nil), row...))
	return nil
}
