package booking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOn(t *testing.T) {
	in := MustParseDate("2026-01-10")
	out := MustParseDate("2026-01-12")

	assert.Equal(t, StatusCheckin, StatusOn(in, out, in))
	assert.Equal(t, StatusStaying, StatusOn(in, out, in.AddDays(1)))
	assert.Equal(t, StatusCheckout, StatusOn(in, out, out))
	// Same-day stay resolves to check-in.
	assert.Equal(t, StatusCheckin, StatusOn(in, in, in))
}

func TestWeekdayLabel(t *testing.T) {
	// 2026-01-11 is a Sunday.
	labels := []string{}
	for d := range Days(MustParseDate("2026-01-11"), MustParseDate("2026-01-17")) {
		labels = append(labels, WeekdayLabel(d))
	}
	assert.Equal(t, []string{"DOM", "SEG", "TER", "QUA", "QUI", "SEX", "SÁB"}, labels)
}

func TestBuildDailyGrid(t *testing.T) {
	ivs := intervals(t,
		record("stay", "L1", "2026-01-08", "2026-01-12", "reserved"),
		record("arrive", "L2", "2026-01-10", "2026-01-14", "reserved"),
		record("leave", "L3", "2026-01-05", "2026-01-10", "provisional"),
		record("block", "L4", "2026-01-01", "2026-01-31", "blocked"),
	)
	from := MustParseDate("2026-01-09")
	to := MustParseDate("2026-01-11")
	today := MustParseDate("2026-01-10")

	grid := BuildDailyGrid(ivs, from, to, today)
	require.Len(t, grid, 3)

	assert.Equal(t, "2026-01-09", grid[0].Date.String())
	assert.False(t, grid[0].IsToday)
	assert.True(t, grid[1].IsToday)
	assert.Equal(t, "SÁB", grid[1].DayOfWeek)

	day := grid[1]
	ids := []string{}
	statuses := []GuestStatus{}
	for _, g := range day.Guests {
		ids = append(ids, g.ID)
		statuses = append(statuses, g.Status)
	}
	assert.Equal(t, []string{"leave", "arrive", "stay"}, ids)
	assert.Equal(t, []GuestStatus{StatusCheckout, StatusCheckin, StatusStaying}, statuses)

	for _, d := range grid {
		for _, g := range d.Guests {
			assert.NotEqual(t, "block", g.ID, "blocked intervals never appear in the grid")
		}
	}
}

func TestBuildDailyGrid_ChangeoverShowsBothGuests(t *testing.T) {
	ivs := intervals(t,
		record("a", "L1", "2026-01-10", "2026-01-15", "reserved"),
		record("b", "L1", "2026-01-15", "2026-01-20", "reserved"),
	)
	day := MustParseDate("2026-01-15")
	grid := BuildDailyGrid(ivs, day, day, day)
	require.Len(t, grid, 1)
	require.Len(t, grid[0].Guests, 2)
	assert.Equal(t, "a", grid[0].Guests[0].ID)
	assert.Equal(t, StatusCheckout, grid[0].Guests[0].Status)
	assert.Equal(t, "b", grid[0].Guests[1].ID)
	assert.Equal(t, StatusCheckin, grid[0].Guests[1].Status)
}

func TestBuildDailyGrid_EmptyAndReversed(t *testing.T) {
	from := MustParseDate("2026-01-01")
	to := MustParseDate("2026-01-07")
	grid := BuildDailyGrid(nil, from, to, from)
	require.Len(t, grid, 7)
	for _, d := range grid {
		assert.NotNil(t, d.Guests)
		assert.Empty(t, d.Guests)
	}
	assert.Empty(t, BuildDailyGrid(nil, to, from, from))
}

func TestBuildDailyGrid_Deterministic(t *testing.T) {
	ivs := intervals(t,
		record("a", "L1", "2026-01-10", "2026-01-15", "reserved"),
		record("b", "L2", "2026-01-10", "2026-01-15", "reserved"),
		record("c", "L3", "2026-01-12", "2026-01-18", "reserved"),
	)
	from := MustParseDate("2026-01-09")
	to := MustParseDate("2026-01-19")
	first := BuildDailyGrid(ivs, from, to, from)
	second := BuildDailyGrid(ivs, from, to, from)
	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Date{})); diff != "" {
		t.Errorf("grid differs between runs (-first +second):\n%s", diff)
	}
}
