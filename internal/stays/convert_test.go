package stays

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-dashboard-backend/internal/model"
	"booking-dashboard-backend/internal/store"
)

const upstreamBooking = `{
	"_id": "6543abc",
	"id": "HA01J",
	"_idlisting": "L1",
	"type": "Booked",
	"status": "confirmed",
	"checkInDate": "2026-01-10T00:00:00.000Z",
	"checkInTime": "15:00",
	"checkOutDate": "2026-01-15",
	"checkOutTime": "",
	"source": "website",
	"listing": {"internalName": "L-RL-17-101 | LEB Rita Ludolf 17/101"},
	"partner": {"name": "Airbnb"},
	"guests": {"adults": 2, "children": 1, "infants": 1},
	"guestsDetails": {"name": " Maria Silva ", "list": [
		{"email": "", "phones": []},
		{"email": "maria@example.com", "phones": [{"iso": "+5521999990000"}]}
	]},
	"price": {"currency": "BRL", "_f_total": 1250.5},
	"stats": {"nightsCount": 5}
}`

func decodeBooking(t *testing.T, raw string) store.ApiBooking {
	var b store.ApiBooking
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	return b
}

func TestToBooking(t *testing.T) {
	rec := ToBooking(decodeBooking(t, upstreamBooking), nil)

	assert.Equal(t, "6543abc", rec.ReservationID)
	assert.Equal(t, "HA01J", rec.BookingCode)
	assert.Equal(t, "L1", rec.ListingID)
	assert.Equal(t, "L-RL-17-101", rec.ApartmentCode)
	require.NotNil(t, rec.ListingName)
	assert.Equal(t, "LEB Rita Ludolf 17/101", *rec.ListingName)
	assert.Equal(t, "2026-01-10", rec.CheckInDate)
	assert.Equal(t, "2026-01-15", rec.CheckOutDate)
	require.NotNil(t, rec.CheckInTime)
	assert.Equal(t, "15:00", *rec.CheckInTime)
	assert.Nil(t, rec.CheckOutTime)
	assert.Equal(t, "booked", rec.Type)
	assert.Equal(t, 5, rec.Nights)
	assert.Equal(t, "Maria Silva", rec.GuestName)
	assert.Equal(t, "maria@example.com", rec.GuestEmail)
	assert.Equal(t, "+5521999990000", rec.GuestPhone)
	assert.Equal(t, 4, rec.GuestCount)
	assert.Equal(t, 1, rec.Babies)
	require.NotNil(t, rec.Platform)
	assert.Equal(t, "Airbnb", *rec.Platform)
	require.NotNil(t, rec.PriceValue)
	assert.InDelta(t, 1250.5, *rec.PriceValue, 0.001)
	assert.Equal(t, "BRL", *rec.PriceCurrency)
}

func TestToBooking_Fallbacks(t *testing.T) {
	t.Run("known listing wins over embedded name", func(t *testing.T) {
		name := "Stored Name"
		listings := map[string]model.Listing{"L1": {ID: "L1", Code: "L-XX-1-1", Name: &name}}
		rec := ToBooking(decodeBooking(t, upstreamBooking), listings)
		assert.Equal(t, "L-XX-1-1", rec.ApartmentCode)
		assert.Equal(t, &name, rec.ListingName)
	})

	t.Run("source when no partner and computed nights", func(t *testing.T) {
		rec := ToBooking(store.ApiBooking{
			ID: "r1", ListingID: "L9", Type: "blocked", Source: "direct",
			CheckInDate: "2026-02-01", CheckOutDate: "2026-02-04",
		}, nil)
		assert.Equal(t, "L9", rec.ApartmentCode)
		require.NotNil(t, rec.Platform)
		assert.Equal(t, "direct", *rec.Platform)
		assert.Equal(t, 3, rec.Nights)
		assert.Nil(t, rec.PriceValue)
		assert.Nil(t, rec.PriceCurrency)
	})

	t.Run("no platform and malformed dates kept", func(t *testing.T) {
		rec := ToBooking(store.ApiBooking{ID: "r2", ListingID: "L9", CheckInDate: "soon", CheckOutDate: "2026-02-04"}, nil)
		assert.Nil(t, rec.Platform)
		assert.Equal(t, "soon", rec.CheckInDate)
		assert.Zero(t, rec.Nights)
	})
}
