package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomasterleague/league-bot/internal/gate"
	"github.com/echomasterleague/league-bot/internal/league"
	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
)

func setupGate(t *testing.T) (*gate.Gate, *league.Tables) {
	t.Helper()

	backend := sheets.NewMock()
	backend.AddSpreadsheet("https://sheets.test/db")
	backend.AddSpreadsheet("https://sheets.test/view")

	ctx := context.Background()
	db, err := backend.Open(ctx, "https://sheets.test/db")
	require.NoError(t, err)
	view, err := backend.Open(ctx, "https://sheets.test/view")
	require.NoError(t, err)

	tables := league.NewTables(store.New(time.Hour, 600, 600, metrics.NewMock()))
	require.NoError(t, tables.Init(ctx, db, view))
	return gate.New(tables.CommandLocks), tables
}

func TestUnknownCommandIsAllowed(t *testing.T) {
	g, tables := setupGate(t)
	ctx := context.Background()

	assert.True(t, g.IsEnabled(ctx, "register"))

	// The lookup seeds an allowed row so operators can flip it in the sheet.
	rec, err := tables.CommandLocks.ByCommand(ctx, "register")
	require.NoError(t, err)
	assert.True(t, rec.GetBool(league.FieldIsAllowed))
}

func TestDisableAndEnable(t *testing.T) {
	g, _ := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.Disable(ctx, "join"))
	assert.False(t, g.IsEnabled(ctx, "join"))

	require.NoError(t, g.Enable(ctx, "join"))
	assert.True(t, g.IsEnabled(ctx, "join"))
}

func TestDeletingTheRowRestoresDefaultOpen(t *testing.T) {
	g, tables := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.Disable(ctx, "join"))
	require.False(t, g.IsEnabled(ctx, "join"))

	rec, err := tables.CommandLocks.ByCommand(ctx, "join")
	require.NoError(t, err)
	require.NoError(t, tables.CommandLocks.Delete(ctx, rec.ID()))

	assert.True(t, g.IsEnabled(ctx, "join"), "no row means allowed")
}

func TestStatusListsExplicitLocksOnly(t *testing.T) {
	g, _ := setupGate(t)
	ctx := context.Background()

	require.NoError(t, g.Disable(ctx, "join"))
	require.NoError(t, g.Enable(ctx, "register"))

	status, err := g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"join": false, "register": true}, status)
}

func TestGateSurvivesBackendOutage(t *testing.T) {
	backend := sheets.NewMock()
	backend.AddSpreadsheet("https://sheets.test/db")
	backend.AddSpreadsheet("https://sheets.test/view")

	ctx := context.Background()
	db, err := backend.Open(ctx, "https://sheets.test/db")
	require.NoError(t, err)
	view, err := backend.Open(ctx, "https://sheets.test/view")
	require.NoError(t, err)

	// Zero TTL forces a refresh attempt on every read.
	tables := league.NewTables(store.New(0, 600, 600, metrics.NewMock()))
	require.NoError(t, tables.Init(ctx, db, view))
	g := gate.New(tables.CommandLocks)

	require.NoError(t, g.Disable(ctx, "join"))
	backend.Disconnect()

	// The cached grid still answers; an explicit lock stays effective.
	assert.False(t, g.IsEnabled(ctx, "join"))
	assert.True(t, g.IsEnabled(ctx, "register"), "an outage never blocks commands")
}
