package booking

import (
	"testing"

	"github.com/stretchr/testify/require"

	"booking-dashboard-backend/internal/model"
)

// record builds a stored booking with the fields the engine reads most.
func record(id, listing, checkIn, checkOut, typ string) model.Booking {
	return model.Booking{
		ReservationID: id,
		BookingCode:   "BK-" + id,
		ListingID:     listing,
		ApartmentCode: "U-" + listing,
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Type:          typ,
		Status:        "confirmed",
		GuestName:     "Guest " + id,
	}
}

func withPlatform(b model.Booking, platform string) model.Booking {
	b.Platform = &platform
	return b
}

// intervals normalizes records and fails the test if any is rejected.
func intervals(t *testing.T, records ...model.Booking) []Interval {
	t.Helper()
	snap := Normalize(records)
	require.Empty(t, snap.Rejected)
	return snap.Intervals
}
