package table_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/record"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
	"github.com/echomasterleague/league-bot/internal/table"
)

var playerFields = record.NewFieldSet("player_name", "region")

func uniqueName(candidate *record.Record, existing []*record.Record) error {
	for _, rec := range existing {
		if rec.Get("player_name") == candidate.Get("player_name") {
			return fmt.Errorf("%w: %s", table.ErrRecordAlreadyExists, candidate.Get("player_name"))
		}
	}
	return nil
}

func setupTable(t *testing.T) *table.Table {
	t.Helper()

	backend := sheets.NewMock()
	backend.AddSpreadsheet("https://sheets.test/db")
	handle, err := backend.Open(context.Background(), "https://sheets.test/db")
	require.NoError(t, err)

	s := store.New(time.Hour, 600, 600, metrics.NewMock())
	tbl := table.New(s, "Players", playerFields, uniqueName)
	require.NoError(t, tbl.Init(context.Background(), handle))
	return tbl
}

func TestCreateAssignsSystemColumns(t *testing.T) {
	tbl := setupTable(t)
	ctx := context.Background()

	rec, err := tbl.Create(ctx, map[string]string{"player_name": "Alice", "region": "NA"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID())
	assert.False(t, rec.CreatedAt().IsZero())
	assert.Equal(t, rec.Get("created_at"), rec.Get("updated_at"))

	got, err := tbl.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Get("player_name"))
}

func TestUniquenessCheckRejectsDuplicates(t *testing.T) {
	tbl := setupTable(t)
	ctx := context.Background()

	_, err := tbl.Create(ctx, map[string]string{"player_name": "Alice"})
	require.NoError(t, err)

	_, err = tbl.Create(ctx, map[string]string{"player_name": "Alice"})
	assert.ErrorIs(t, err, table.ErrRecordAlreadyExists)

	recs, err := tbl.All(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "the rejected row must not reach the table")
}

func TestFindIsCaseInsensitive(t *testing.T) {
	tbl := setupTable(t)
	ctx := context.Background()

	_, err := tbl.Create(ctx, map[string]string{"player_name": "Alice", "region": "NA"})
	require.NoError(t, err)
	_, err = tbl.Create(ctx, map[string]string{"player_name": "Bob", "region": "EU"})
	require.NoError(t, err)

	t.Run("case-folded value match", func(t *testing.T) {
		recs, err := tbl.Find(ctx, map[string]string{"player_name": "ALICE"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Alice", recs[0].Get("player_name"), "original casing is stored")
	})

	t.Run("empty filter value means any", func(t *testing.T) {
		recs, err := tbl.Find(ctx, map[string]string{"player_name": "", "region": "eu"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "Bob", recs[0].Get("player_name"))
	})

	t.Run("filters compose by conjunction", func(t *testing.T) {
		recs, err := tbl.Find(ctx, map[string]string{"player_name": "alice", "region": "EU"})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	tbl := setupTable(t)
	ctx := context.Background()

	rec, err := tbl.Create(ctx, map[string]string{"player_name": "Alice", "region": "NA"})
	require.NoError(t, err)

	rec.Set("player_name", "Alicia")
	require.NoError(t, tbl.Update(ctx, rec))

	got, err := tbl.Get(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Get("player_name"))

	require.NoError(t, tbl.Delete(ctx, rec.ID()))
	_, err = tbl.Get(ctx, rec.ID())
	assert.ErrorIs(t, err, table.ErrRecordNotFound)
}

func TestMissingRecordErrors(t *testing.T) {
	tbl := setupTable(t)
	ctx := context.Background()

	_, err := tbl.Get(ctx, "ghost")
	assert.ErrorIs(t, err, table.ErrRecordNotFound)

	_, err = tbl.FindOne(ctx, map[string]string{"player_name": "nobody"})
	assert.ErrorIs(t, err, table.ErrRecordNotFound)

	assert.ErrorIs(t, tbl.Delete(ctx, "ghost"), table.ErrRecordNotFound)

	phantom := tbl.CreateRecord(map[string]string{"player_name": "Eve"})
	assert.ErrorIs(t, tbl.Update(ctx, phantom), table.ErrRecordNotFound)
}

func TestHeaderRebinding(t *testing.T) {
	// A worksheet whose columns were reordered or extended by an operator
	// must still read and write correctly through the field enumeration.
	backend := sheets.NewMock()
	sp := backend.AddSpreadsheet("https://sheets.test/db")
	sp.Seed("Players", sheets.Grid{
		{"record_id", "created_at", "updated_at", "region", "player_name", "notes"},
		{"p1", "100", "100", "NA", "Alice", "operator scribble"},
	})
	handle, err := backend.Open(context.Background(), "https://sheets.test/db")
	require.NoError(t, err)

	s := store.New(time.Hour, 600, 600, metrics.NewMock())
	tbl := table.New(s, "Players", playerFields, uniqueName)
	require.NoError(t, tbl.Init(context.Background(), handle))
	ctx := context.Background()

	got, err := tbl.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Get("player_name"))
	assert.Equal(t, "NA", got.Get("region"))

	// An update keeps the surplus operator column intact.
	got.Set("player_name", "Alicia")
	require.NoError(t, tbl.Update(ctx, got))
	require.NoError(t, s.Flush(ctx))

	grid := sp.Rows("Players")
	require.Len(t, grid, 2)
	assert.Equal(t, "Alicia", grid[1][4])
	assert.Equal(t, "operator scribble", grid[1][5])
}

func TestHeaderMismatch(t *testing.T) {
	backend := sheets.NewMock()
	sp := backend.AddSpreadsheet("https://sheets.test/db")
	sp.Seed("Players", sheets.Grid{
		{"record_id", "created_at", "updated_at", "player_name"}, // region missing
	})
	handle, err := backend.Open(context.Background(), "https://sheets.test/db")
	require.NoError(t, err)

	s := store.New(time.Hour, 600, 600, metrics.NewMock())
	tbl := table.New(s, "Players", playerFields, nil)
	assert.ErrorIs(t, tbl.Init(context.Background(), handle), table.ErrHeaderMismatch)
}
