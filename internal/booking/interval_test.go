package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-dashboard-backend/internal/model"
)

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeBlocked, ParseType("blocked"))
	assert.Equal(t, TypeBlocked, ParseType(" Blocked "))
	assert.Equal(t, TypeProvisional, ParseType("provisional"))
	assert.Equal(t, TypeReserved, ParseType("reserved"))
	assert.Equal(t, TypeReserved, ParseType("booked"))
	assert.Equal(t, TypeReserved, ParseType(""))
}

func TestNormalize(t *testing.T) {
	valid := record("r1", "L1", "2026-01-10", "2026-01-15", "reserved")
	valid.Adults, valid.Children = 2, 1

	noCode := record("r2", "L2", "2026-01-10T00:00:00Z", "2026-01-12", "blocked")
	noCode.ApartmentCode = ""

	missingListing := record("r3", "", "2026-01-10", "2026-01-12", "reserved")
	badCheckIn := record("r4", "L1", "10/01/2026", "2026-01-12", "reserved")
	badCheckOut := record("r5", "L1", "2026-01-10", "", "reserved")
	empty := record("r6", "L1", "2026-02-01", "2026-02-01", "reserved")
	reversed := record("r7", "L1", "2026-02-05", "2026-02-01", "reserved")

	snap := Normalize([]model.Booking{valid, missingListing, noCode, badCheckIn, badCheckOut, empty, reversed})

	require.Len(t, snap.Intervals, 2)
	first := snap.Intervals[0]
	assert.Equal(t, "r1", first.ReservationID)
	assert.Equal(t, "U-L1", first.UnitCode)
	assert.Equal(t, 5, first.Nights)
	assert.Equal(t, 3, first.GuestCount, "guest count falls back to party size")
	assert.Equal(t, OtherPlatform, first.Platform)
	assert.Equal(t, TypeReserved, first.Type)

	second := snap.Intervals[1]
	assert.Equal(t, "L2", second.UnitCode, "unit code falls back to listing id")
	assert.True(t, second.IsBlocked())
	assert.Equal(t, "2026-01-10", second.CheckIn.String())

	reasons := map[string]string{}
	for _, r := range snap.Rejected {
		reasons[r.ReservationID] = r.Reason
	}
	assert.Equal(t, map[string]string{
		"r3": ReasonMissingListing,
		"r4": ReasonInvalidCheckIn,
		"r5": ReasonInvalidCheckOut,
		"r6": ReasonEmptyInterval,
		"r7": ReasonEmptyInterval,
	}, reasons)
}

func TestNormalize_EmptyIntervalExcludedFromEveryView(t *testing.T) {
	records := []model.Booking{record("r1", "L1", "2026-02-01", "2026-02-01", "reserved")}
	snap := Normalize(records)
	require.Len(t, snap.Rejected, 1)

	day := MustParseDate("2026-02-01")
	grid := BuildDailyGrid(snap.Intervals, day, day, day)
	require.Len(t, grid, 1)
	assert.Empty(t, grid[0].Guests)
	assert.Empty(t, BuildCalendar(snap.Intervals, day.AddDays(-1), day.AddDays(1)))
	assert.Empty(t, DetectConflicts(snap.Intervals))
	assert.Equal(t, OccupancySnapshot{}, OccupancyOn(snap.Intervals, len(Units(snap.Intervals)), day))
}

func TestInterval_CoversAndIntersects(t *testing.T) {
	iv := intervals(t, record("r1", "L1", "2026-01-10", "2026-01-15", "reserved"))[0]

	assert.False(t, iv.Covers(MustParseDate("2026-01-09")))
	assert.True(t, iv.Covers(MustParseDate("2026-01-10")))
	assert.True(t, iv.Covers(MustParseDate("2026-01-12")))
	assert.True(t, iv.Covers(MustParseDate("2026-01-15")), "checkout day is covered")
	assert.False(t, iv.Covers(MustParseDate("2026-01-16")))

	assert.True(t, iv.Intersects(MustParseDate("2026-01-15"), MustParseDate("2026-01-20")))
	assert.True(t, iv.Intersects(MustParseDate("2026-01-01"), MustParseDate("2026-01-10")))
	assert.False(t, iv.Intersects(MustParseDate("2026-01-16"), MustParseDate("2026-01-20")))
	assert.False(t, iv.Intersects(MustParseDate("2026-01-01"), MustParseDate("2026-01-09")))
}

func TestUnits(t *testing.T) {
	ivs := intervals(t,
		record("r1", "L2", "2026-01-10", "2026-01-15", "reserved"),
		record("r2", "L1", "2026-01-10", "2026-01-15", "blocked"),
		record("r3", "L2", "2026-01-20", "2026-01-25", "reserved"),
	)
	units := Units(ivs)
	require.Len(t, units, 2)
	assert.Equal(t, "L2", units[0].ListingID)
	assert.Equal(t, "L1", units[1].ListingID, "blocked-only listings still count as units")
}
