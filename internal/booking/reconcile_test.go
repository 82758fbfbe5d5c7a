package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-dashboard-backend/internal/model"
)

func ids(records []model.Booking) []string {
	out := []string{}
	for _, r := range records {
		out = append(out, r.ReservationID)
	}
	return out
}

func TestReconcile(t *testing.T) {
	source := []model.Booking{
		record("1", "L1", "2026-01-10", "2026-01-12", "reserved"),
		record("2", "L1", "2026-01-12", "2026-01-14", "reserved"),
		record("3", "L2", "2026-01-10", "2026-01-11", "reserved"),
	}
	target := []model.Booking{
		record("2", "L1", "2026-01-12", "2026-01-14", "reserved"),
		record("3", "L2", "2026-01-10", "2026-01-11", "reserved"),
		record("4", "L2", "2026-01-20", "2026-01-21", "reserved"),
	}

	rec := Reconcile(source, target)
	assert.Equal(t, []string{"1"}, ids(rec.Missing))
	assert.Equal(t, []string{"4"}, ids(rec.Extra))
	assert.False(t, rec.InSync)
	assert.Equal(t, 3, rec.SourceCount)
	assert.Equal(t, 3, rec.TargetCount)
}

func TestReconcile_InSync(t *testing.T) {
	records := []model.Booking{
		record("1", "L1", "2026-01-10", "2026-01-12", "reserved"),
		record("2", "L1", "2026-01-12", "2026-01-14", "reserved"),
	}
	rec := Reconcile(records, records)
	assert.True(t, rec.InSync)
	assert.Empty(t, rec.Missing)
	assert.Empty(t, rec.Extra)
	assert.Empty(t, rec.MissingByCheckIn)
}

func TestReconcile_DuplicatesBreakSync(t *testing.T) {
	a := record("1", "L1", "2026-01-10", "2026-01-12", "reserved")
	rec := Reconcile([]model.Booking{a}, []model.Booking{a, a})
	assert.Empty(t, rec.Missing)
	assert.Empty(t, rec.Extra)
	assert.False(t, rec.InSync, "duplicate copies mean the target is not in sync")
}

func TestReconcile_MalformedRecordsAreKept(t *testing.T) {
	bad := record("x", "", "not-a-date", "", "")
	rec := Reconcile([]model.Booking{bad}, nil)
	require.Len(t, rec.Missing, 1)
	require.Len(t, rec.MissingByCheckIn, 1)
	assert.Equal(t, "not-a-date", rec.MissingByCheckIn[0].CheckInDate)
	assert.Equal(t, []Breakdown{{Name: "unknown", Count: 1, Percent: 100}}, rec.MissingByType)
}

func TestReconcile_Breakdowns(t *testing.T) {
	source := []model.Booking{
		withPlatform(record("1", "L1", "2026-01-12", "2026-01-14", "reserved"), "Airbnb"),
		withPlatform(record("2", "L1", "2026-01-10T03:00:00Z", "2026-01-12", "reserved"), "Airbnb"),
		record("3", "L2", "2026-01-10", "2026-01-11", "blocked"),
		withPlatform(record("4", "L3", "2026-01-12", "2026-01-13", "reserved"), "Booking.com"),
	}
	source[2].Status = ""

	rec := Reconcile(source, nil)

	require.Len(t, rec.MissingByCheckIn, 2)
	assert.Equal(t, "2026-01-10", rec.MissingByCheckIn[0].CheckInDate)
	assert.Equal(t, []string{"2", "3"}, ids(rec.MissingByCheckIn[0].Records))
	assert.Equal(t, "2026-01-12", rec.MissingByCheckIn[1].CheckInDate)
	assert.Equal(t, []string{"1", "4"}, ids(rec.MissingByCheckIn[1].Records))

	assert.Equal(t, []Breakdown{
		{Name: "reserved", Count: 3, Percent: 75},
		{Name: "blocked", Count: 1, Percent: 25},
	}, rec.MissingByType)
	assert.Equal(t, []Breakdown{
		{Name: "Airbnb", Count: 2, Percent: 50},
		{Name: OtherPlatform, Count: 1, Percent: 25},
		{Name: "Booking.com", Count: 1, Percent: 25},
	}, rec.MissingByPlatform)
	assert.Equal(t, []Breakdown{
		{Name: "confirmed", Count: 3, Percent: 75},
		{Name: "unknown", Count: 1, Percent: 25},
	}, rec.MissingByStatus)
}
