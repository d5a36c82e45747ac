package record_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomasterleague/league-bot/internal/record"
)

func testFields(t *testing.T) *record.FieldSet {
	t.Helper()
	return record.NewFieldSet("player_name", "is_captain", "expires_at")
}

func TestFieldSetBinding(t *testing.T) {
	fields := testFields(t)

	assert.Equal(t, 6, fields.Len(), "three system columns plus three domain columns")
	assert.Equal(t, []string{"record_id", "created_at", "updated_at", "player_name", "is_captain", "expires_at"}, fields.Header())

	i, ok := fields.Index("record_id")
	require.True(t, ok)
	assert.Equal(t, 0, i, "record_id must be column 0")

	_, ok = fields.Index("no_such_field")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	fields := testFields(t)

	rec := record.New(fields)
	rec.SetRaw("record_id", "abc-123")
	rec.Set("player_name", "Alice")
	rec.SetBool("is_captain", true)
	rec.SetTime("expires_at", time.Unix(1700000000, 0))

	row := rec.ToRow()
	again := record.FromRow(fields, row)

	assert.Equal(t, rec.ToRow(), again.ToRow())
	assert.Equal(t, "abc-123", again.ID())
	assert.Equal(t, "Alice", again.Get("player_name"))
	assert.True(t, again.GetBool("is_captain"))
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), again.GetTime("expires_at"))
}

func TestCoercion(t *testing.T) {
	fields := testFields(t)

	t.Run("booleans serialize as Yes and No", func(t *testing.T) {
		rec := record.New(fields)
		rec.SetBool("is_captain", true)
		assert.Equal(t, "Yes", rec.Get("is_captain"))
		rec.SetBool("is_captain", false)
		assert.Equal(t, "No", rec.Get("is_captain"))
	})

	t.Run("empty cells read as unset values", func(t *testing.T) {
		rec := record.FromRow(fields, []string{"id", "", "", "", "", ""})
		assert.False(t, rec.GetBool("is_captain"))
		assert.True(t, rec.GetTime("expires_at").IsZero())
		assert.Equal(t, 0, rec.GetInt("expires_at"))
	})

	t.Run("timestamps serialize as epoch seconds", func(t *testing.T) {
		rec := record.New(fields)
		rec.SetTime("expires_at", time.Unix(42, 0))
		assert.Equal(t, "42", rec.Get("expires_at"))

		rec.SetTime("expires_at", time.Time{})
		assert.Equal(t, "", rec.Get("expires_at"))
	})
}

func TestShortRowsArePadded(t *testing.T) {
	fields := testFields(t)

	// The backend trims trailing empty cells; a short row must still be readable.
	rec := record.FromRow(fields, []string{"id-1", "100", "100"})
	assert.Equal(t, "", rec.Get("player_name"))
	assert.False(t, rec.GetBool("is_captain"))
}

func TestSetStampsUpdatedAtAndDirty(t *testing.T) {
	fields := testFields(t)

	rec := record.New(fields)
	require.False(t, rec.Dirty())
	require.True(t, rec.UpdatedAt().IsZero())

	before := time.Now().Add(-time.Second)
	rec.Set("player_name", "Bob")

	assert.True(t, rec.Dirty())
	assert.True(t, rec.UpdatedAt().After(before), "setter must stamp updated_at")

	rec.ClearDirty()
	assert.False(t, rec.Dirty())
}

func TestSetRawDoesNotStamp(t *testing.T) {
	fields := testFields(t)

	rec := record.New(fields)
	rec.SetRaw("player_name", "Carol")
	assert.False(t, rec.Dirty())
	assert.True(t, rec.UpdatedAt().IsZero())
}

func TestToMap(t *testing.T) {
	fields := testFields(t)

	rec := record.New(fields)
	rec.SetRaw("record_id", "id-9")
	rec.SetRaw("player_name", "Dana")

	m := rec.ToMap()
	assert.Equal(t, "id-9", m["record_id"])
	assert.Equal(t, "Dana", m["player_name"])
	assert.Len(t, m, fields.Len())
}
