package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/echomasterleague/league-bot/internal/sheets"
)

// RunFlusher drains the pending queues every interval until ctx is cancelled.
func (s *Store) RunFlusher(ctx context.Context, interval time.Duration) {
	log.Info("Flusher started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Flusher stopped")
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				log.Error("Flush pass failed", "error", err)
			}
		}
	}
}

// Flush drains the pending queue of every registered worksheet. A worksheet
// whose batch fails keeps its ops at the head of the queue for the next pass;
// the error of the last failing worksheet is returned.
func (s *Store) Flush(ctx context.Context) error {
	s.metrics.IncFlushRuns()
	var lastErr error
	for _, title := range s.Titles() {
		if err := s.flushWorksheet(ctx, title); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// flushWorksheet pops the whole pending list for one worksheet and applies it
// to the backend. When the batch contains any update or delete, the cheapest
// correct option on a backend without row addressing is a single overwrite of
// the full grid; insert-only batches become one append per row.
func (s *Store) flushWorksheet(ctx context.Context, title string) error {
	s.mu.Lock()
	st, ok := s.states[title]
	if !ok || len(st.pending) == 0 {
		// Nothing pending: no backend calls at all, so re-flushing a flushed
		// batch is a no-op.
		s.mu.Unlock()
		return nil
	}
	batch := st.pending
	st.pending = nil
	// The live grid is snapshot + batch applied in order, which is exactly
	// the state an overwrite must produce.
	gridCopy := st.grid.Clone()
	ws := st.ws
	s.mu.Unlock()

	structural := false
	for _, op := range batch {
		if op.kind != opInsert {
			structural = true
			break
		}
	}

	var err error
	var applied int
	if structural {
		err = s.overwrite(ctx, ws, gridCopy)
		if err == nil {
			applied = len(batch)
		}
	} else {
		applied, err = s.appendRows(ctx, ws, batch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Return the unapplied remainder to the head of the queue, ahead of
		// anything enqueued while we were writing.
		st.pending = append(append([]pendingOp(nil), batch[applied:]...), st.pending...)
		st.failures++
		if st.failures >= degradedThreshold && !st.degraded {
			st.degraded = true
			log.Error("Worksheet marked degraded after repeated flush failures", "title", title, "failures", st.failures)
		}
		s.metrics.IncFlushFailures()
		s.publishPendingLocked()
		return err
	}

	if st.degraded {
		log.Info("Worksheet recovered from degraded state", "title", title)
	}
	st.failures = 0
	st.degraded = false
	st.fetchedAt = time.Now()
	s.publishPendingLocked()
	log.Debug("Flushed worksheet", "title", title, "ops", len(batch), "overwrite", structural)
	return nil
}

func (s *Store) overwrite(ctx context.Context, ws sheets.Worksheet, grid sheets.Grid) error {
	if err := s.writeLimit.Wait(ctx); err != nil {
		return err
	}
	s.metrics.IncBackendWrites()
	if err := ws.OverwriteAll(ctx, grid); err != nil {
		s.metrics.IncBackendErrors()
		return err
	}
	return nil
}

// appendRows applies an insert-only batch row by row and reports how many
// rows made it to the backend before the first failure.
func (s *Store) appendRows(ctx context.Context, ws sheets.Worksheet, batch []pendingOp) (int, error) {
	for i, op := range batch {
		if err := s.writeLimit.Wait(ctx); err != nil {
			return i, err
		}
		s.metrics.IncBackendWrites()
		if err := ws.Append(ctx, op.row); err != nil {
			s.metrics.IncBackendErrors()
			return i, err
		}
	}
	return len(batch), nil
}
