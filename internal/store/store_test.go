package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
)

const testSheet = "Players"

var testHeader = []string{"record_id", "created_at", "updated_at", "player_name"}

// setupStore registers one worksheet on a fresh mock backend.
func setupStore(t *testing.T, ttl time.Duration) (*store.Store, *sheets.MockBackend, *sheets.MockSpreadsheet) {
	t.Helper()

	backend := sheets.NewMock()
	sp := backend.AddSpreadsheet("https://sheets.test/db")
	handle, err := backend.Open(context.Background(), "https://sheets.test/db")
	require.NoError(t, err)

	s := store.New(ttl, 600, 600, metrics.NewMock())
	require.NoError(t, s.Register(context.Background(), handle, testSheet, testHeader))
	return s, backend, sp
}

func row(id, name string) []string {
	return []string{id, "100", "100", name}
}

func TestRegisterCreatesWorksheetWithHeader(t *testing.T) {
	_, _, sp := setupStore(t, time.Hour)

	grid := sp.Rows(testSheet)
	require.Len(t, grid, 1)
	assert.Equal(t, testHeader, grid[0])
}

func TestReadYourWrites(t *testing.T) {
	s, _, _ := setupStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))

	grid, err := s.Grid(ctx, testSheet)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "Alice", grid[1][3], "insert must be visible before any flush")
}

func TestPendingWritesPinTheSnapshot(t *testing.T) {
	// TTL zero means every read would normally refresh from the backend.
	s, backend, sp := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))

	// Something else rewrites the remote sheet behind our back.
	sp.Seed(testSheet, sheets.Grid{testHeader, row("px", "Intruder")})

	readsBefore := backend.ReadCalls
	grid, err := s.Grid(ctx, testSheet)
	require.NoError(t, err)
	assert.Equal(t, readsBefore, backend.ReadCalls, "pending writes must suppress the refresh")
	require.Len(t, grid, 2)
	assert.Equal(t, "Alice", grid[1][3])
}

func TestStaleSnapshotRefreshes(t *testing.T) {
	s, backend, sp := setupStore(t, 0)
	ctx := context.Background()

	sp.Seed(testSheet, sheets.Grid{testHeader, row("p9", "Remote")})

	readsBefore := backend.ReadCalls
	grid, err := s.Grid(ctx, testSheet)
	require.NoError(t, err)
	assert.Greater(t, backend.ReadCalls, readsBefore)
	require.Len(t, grid, 2)
	assert.Equal(t, "Remote", grid[1][3])
}

func TestFailedRefreshServesStaleGrid(t *testing.T) {
	s, backend, _ := setupStore(t, 0)
	ctx := context.Background()

	backend.Disconnect()
	grid, err := s.Grid(ctx, testSheet)
	require.NoError(t, err, "a failed refresh is a cache miss, not an error")
	assert.Len(t, grid, 1)
}

func TestPendingOpCoalescing(t *testing.T) {
	ctx := context.Background()

	t.Run("insert then update stays one pending op", func(t *testing.T) {
		s, _, _ := setupStore(t, time.Hour)
		require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
		require.NoError(t, s.Update(testSheet, "p1", row("p1", "Alicia")))

		assert.Equal(t, map[string]int{testSheet: 1}, s.PendingWrites())

		grid, err := s.Grid(ctx, testSheet)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", grid[1][3])
	})

	t.Run("insert then delete cancels out", func(t *testing.T) {
		s, _, _ := setupStore(t, time.Hour)
		require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
		require.NoError(t, s.Delete(testSheet, "p1"))

		assert.Empty(t, s.PendingWrites())

		grid, err := s.Grid(ctx, testSheet)
		require.NoError(t, err)
		assert.Len(t, grid, 1)
	})

	t.Run("update then delete collapses to delete", func(t *testing.T) {
		s, _, sp := setupStore(t, time.Hour)
		require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
		require.NoError(t, s.Flush(ctx))

		require.NoError(t, s.Update(testSheet, "p1", row("p1", "Alicia")))
		require.NoError(t, s.Delete(testSheet, "p1"))
		assert.Equal(t, map[string]int{testSheet: 1}, s.PendingWrites())

		require.NoError(t, s.Flush(ctx))
		assert.Len(t, sp.Rows(testSheet), 1, "row must be gone remotely")
	})
}

func TestDuplicateInsertRejected(t *testing.T) {
	s, _, _ := setupStore(t, time.Hour)

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
	err := s.Insert(testSheet, row("p1", "Clone"))
	assert.ErrorIs(t, err, store.ErrDuplicateRecordID)
}

func TestUpdateUnknownRecord(t *testing.T) {
	s, _, _ := setupStore(t, time.Hour)

	assert.ErrorIs(t, s.Update(testSheet, "ghost", row("ghost", "x")), store.ErrRecordNotFound)
	assert.ErrorIs(t, s.Delete(testSheet, "ghost"), store.ErrRecordNotFound)
}

func TestFlushGroupsOps(t *testing.T) {
	ctx := context.Background()

	t.Run("insert-only batch uses appends", func(t *testing.T) {
		s, backend, sp := setupStore(t, time.Hour)
		require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
		require.NoError(t, s.Insert(testSheet, row("p2", "Bob")))

		overwritesBefore := backend.OverwriteCalls
		require.NoError(t, s.Flush(ctx))

		assert.Equal(t, overwritesBefore, backend.OverwriteCalls, "no overwrite for an insert-only batch")
		assert.Equal(t, 2, backend.AppendCalls)
		assert.Len(t, sp.Rows(testSheet), 3)
	})

	t.Run("batch with an update becomes one overwrite", func(t *testing.T) {
		s, backend, sp := setupStore(t, time.Hour)
		require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
		require.NoError(t, s.Flush(ctx))

		require.NoError(t, s.Insert(testSheet, row("p2", "Bob")))
		require.NoError(t, s.Update(testSheet, "p1", row("p1", "Alicia")))

		appendsBefore := backend.AppendCalls
		overwritesBefore := backend.OverwriteCalls
		require.NoError(t, s.Flush(ctx))

		assert.Equal(t, appendsBefore, backend.AppendCalls)
		assert.Equal(t, overwritesBefore+1, backend.OverwriteCalls)

		grid := sp.Rows(testSheet)
		require.Len(t, grid, 3)
		assert.Equal(t, "Alicia", grid[1][3])
		assert.Equal(t, "Bob", grid[2][3])
	})
}

func TestFlushIsIdempotent(t *testing.T) {
	s, backend, _ := setupStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
	require.NoError(t, s.Flush(ctx))

	appends := backend.AppendCalls
	overwrites := backend.OverwriteCalls
	require.NoError(t, s.Flush(ctx))

	assert.Equal(t, appends, backend.AppendCalls, "second flush must issue no backend writes")
	assert.Equal(t, overwrites, backend.OverwriteCalls)
}

func TestBackendOutageAndRecovery(t *testing.T) {
	s, backend, sp := setupStore(t, time.Hour)
	ctx := context.Background()

	backend.Disconnect()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Insert(testSheet, row(id(i), "Player")))
	}
	assert.Equal(t, map[string]int{testSheet: 10}, s.PendingWrites())

	// Flushes fail while disconnected; the batch returns to the queue.
	require.Error(t, s.Flush(ctx))
	assert.Equal(t, map[string]int{testSheet: 10}, s.PendingWrites())

	backend.Reconnect()
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, s.PendingWrites())
	assert.Len(t, sp.Rows(testSheet), 11, "all ten rows plus the header")
}

func TestDegradedAfterRepeatedFailures(t *testing.T) {
	s, backend, sp := setupStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
	backend.Disconnect()
	for i := 0; i < 3; i++ {
		require.Error(t, s.Flush(ctx))
	}

	// Degraded worksheets serve reads from memory even with a zero TTL and
	// an empty pending queue after recovery of the queue contents.
	grid, err := s.Grid(ctx, testSheet)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "Alice", grid[1][3])

	backend.Reconnect()
	require.NoError(t, s.Flush(ctx))
	assert.Empty(t, s.PendingWrites())
	assert.Len(t, sp.Rows(testSheet), 2)
}

func TestReplayEquivalence(t *testing.T) {
	// The final in-memory grid must equal the flushed snapshot with the same
	// op sequence replayed on top.
	s, _, sp := setupStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Insert(testSheet, row("p1", "Alice")))
	require.NoError(t, s.Insert(testSheet, row("p2", "Bob")))
	require.NoError(t, s.Flush(ctx))

	require.NoError(t, s.Update(testSheet, "p1", row("p1", "Alicia")))
	require.NoError(t, s.Delete(testSheet, "p2"))
	require.NoError(t, s.Insert(testSheet, row("p3", "Carol")))

	inMemory, err := s.Grid(ctx, testSheet)
	require.NoError(t, err)

	replayed := sp.Rows(testSheet).Clone()
	replayed[1] = row("p1", "Alicia")
	replayed = append(replayed[:2], replayed[3:]...)
	replayed = append(replayed, row("p3", "Carol"))

	assert.Equal(t, replayed, inMemory.Clone())
}

func TestCacheTimes(t *testing.T) {
	s, _, _ := setupStore(t, time.Hour)

	times := s.CacheTimes()
	require.Contains(t, times, testSheet)
	assert.WithinDuration(t, time.Now(), times[testSheet], 5*time.Second)
}

func id(i int) string {
	return string(rune('a'+i)) + "-id"
}
