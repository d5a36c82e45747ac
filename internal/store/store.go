package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
)

// New creates a Store. readsPerMinute and writesPerMinute cap the volume of
// backend calls; ttl bounds the age of a served snapshot.
func New(ttl time.Duration, readsPerMinute, writesPerMinute int, m metrics.Metrics) *Store {
	return &Store{
		states:      make(map[string]*worksheetState),
		ttl:         ttl,
		readLimiter: newLimiter(readsPerMinute),
		writeLimit:  newLimiter(writesPerMinute),
		metrics:     m,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// Register resolves a worksheet by title, creating it with the given header
// row if it does not exist yet, and takes the initial snapshot.
func (s *Store) Register(ctx context.Context, sp sheets.Spreadsheet, title string, header []string) error {
	ws, err := sp.Worksheet(ctx, title)
	if errors.Is(err, sheets.ErrWorksheetDoesNotExist) {
		log.Info("Worksheet missing, creating it", "title", title, "columns", len(header))
		ws, err = sp.CreateWorksheet(ctx, title, 1, len(header))
	}
	if err != nil {
		return err
	}

	if err := s.readLimiter.Wait(ctx); err != nil {
		return err
	}
	s.metrics.IncBackendReads()
	grid, err := ws.ReadAll(ctx)
	if err != nil {
		s.metrics.IncBackendErrors()
		return err
	}
	if len(grid) == 0 {
		if err := s.writeLimit.Wait(ctx); err != nil {
			return err
		}
		s.metrics.IncBackendWrites()
		grid = sheets.Grid{append([]string(nil), header...)}
		if err := ws.OverwriteAll(ctx, grid); err != nil {
			s.metrics.IncBackendErrors()
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[title] = &worksheetState{ws: ws, grid: grid, fetchedAt: time.Now()}
	log.Debug("Registered worksheet", "title", title, "rows", len(grid)-1)
	return nil
}

// Grid returns the current in-memory grid for a worksheet, refreshing from
// the backend when the snapshot is older than the TTL and no pending writes
// target the worksheet. Callers must treat the returned grid as read-only.
func (s *Store) Grid(ctx context.Context, title string) (sheets.Grid, error) {
	s.mu.Lock()
	st, ok := s.states[title]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrWorksheetNotRegistered, title)
	}
	// Pending writes pin the snapshot: serving from memory preserves
	// read-your-writes. Degraded worksheets are served from memory too.
	stale := time.Since(st.fetchedAt) > s.ttl
	if !stale || len(st.pending) > 0 || st.degraded {
		grid := st.grid
		s.mu.Unlock()
		return grid, nil
	}
	ws := st.ws
	s.mu.Unlock()

	// Coalesce concurrent refreshes of the same worksheet.
	fresh, err, _ := s.refreshes.Do(title, func() (interface{}, error) {
		if err := s.readLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		s.metrics.IncBackendReads()
		return ws.ReadAll(ctx)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// A failed or cancelled refresh is a cache miss: the previous
		// snapshot stays valid.
		s.metrics.IncBackendErrors()
		log.Warn("Snapshot refresh failed, serving stale grid", "title", title, "error", err)
		return st.grid, nil
	}
	if len(st.pending) > 0 {
		// A writer got in while we were reading; the remote grid is behind
		// the in-memory one now.
		return st.grid, nil
	}
	st.grid = fresh.(sheets.Grid)
	st.fetchedAt = time.Now()
	return st.grid, nil
}

// Insert appends a row to the in-memory grid and enqueues an append.
func (s *Store) Insert(title string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[title]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorksheetNotRegistered, title)
	}
	id := row[0]
	if st.rowIndex(id) >= 0 {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateRecordID, id, title)
	}
	st.grid = append(st.grid, append([]string(nil), row...))
	st.pending = append(st.pending, pendingOp{kind: opInsert, recordID: id, row: append([]string(nil), row...)})
	s.publishPendingLocked()
	return nil
}

// Update replaces a row in the in-memory grid, keyed by record id, and
// enqueues an in-place replacement. A pending insert for the same id is
// superseded by an insert carrying the new contents.
func (s *Store) Update(title, recordID string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[title]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorksheetNotRegistered, title)
	}
	i := st.rowIndex(recordID)
	if i < 0 {
		return fmt.Errorf("%w: %s in %s", ErrRecordNotFound, recordID, title)
	}
	st.grid[i] = append([]string(nil), row...)

	if j := st.pendingIndex(recordID); j >= 0 {
		// insert+update => insert with new contents; update+update => update
		// with new contents. Either way the kind is kept and the row replaced.
		st.pending[j].row = append([]string(nil), row...)
	} else {
		st.pending = append(st.pending, pendingOp{kind: opUpdate, recordID: recordID, row: append([]string(nil), row...)})
	}
	s.publishPendingLocked()
	return nil
}

// Delete drops a row from the in-memory grid and enqueues a removal.
// A pending insert for the same id cancels out entirely; a pending update
// collapses into the delete.
func (s *Store) Delete(title, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[title]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorksheetNotRegistered, title)
	}
	i := st.rowIndex(recordID)
	if i < 0 {
		return fmt.Errorf("%w: %s in %s", ErrRecordNotFound, recordID, title)
	}
	st.grid = append(st.grid[:i], st.grid[i+1:]...)

	if j := st.pendingIndex(recordID); j >= 0 {
		wasInsert := st.pending[j].kind == opInsert
		st.pending = append(st.pending[:j], st.pending[j+1:]...)
		if wasInsert {
			// The row never reached the backend; nothing to remove there.
			s.publishPendingLocked()
			return nil
		}
	}
	st.pending = append(st.pending, pendingOp{kind: opDelete, recordID: recordID})
	s.publishPendingLocked()
	return nil
}

// PendingWrites returns the number of enqueued mutations per worksheet.
// Worksheets with an empty queue are omitted.
func (s *Store) PendingWrites() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for title, st := range s.states {
		if len(st.pending) > 0 {
			out[title] = len(st.pending)
		}
	}
	return out
}

// CacheTimes returns the snapshot fetch time per registered worksheet.
func (s *Store) CacheTimes() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.states))
	for title, st := range s.states {
		out[title] = st.fetchedAt
	}
	return out
}

// Titles returns the registered worksheet titles.
func (s *Store) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.states))
	for title := range s.states {
		titles = append(titles, title)
	}
	return titles
}

func (st *worksheetState) rowIndex(recordID string) int {
	for i := 1; i < len(st.grid); i++ {
		if len(st.grid[i]) > 0 && st.grid[i][0] == recordID {
			return i
		}
	}
	return -1
}

func (st *worksheetState) pendingIndex(recordID string) int {
	for i, op := range st.pending {
		if op.recordID == recordID {
			return i
		}
	}
	return -1
}

func (s *Store) publishPendingLocked() {
	total := 0
	degraded := 0
	for _, st := range s.states {
		total += len(st.pending)
		if st.degraded {
			degraded++
		}
	}
	s.metrics.SetPendingWrites(float64(total))
	s.metrics.SetDegradedWorksheets(float64(degraded))
}
