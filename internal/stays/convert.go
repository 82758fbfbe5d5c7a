package stays

import (
	"strings"

	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/model"
	"booking-dashboard-backend/internal/parse"
	"booking-dashboard-backend/internal/store"
)

// ToBooking maps an upstream reservation onto the stored record. listings
// supplies unit codes and names for already-synced listings; when the
// listing is unknown the embedded listing name is parsed instead.
func ToBooking(b store.ApiBooking, listings map[string]model.Listing) model.Booking {
	rec := model.Booking{
		ReservationID: b.ID,
		BookingCode:   b.Code,
		ListingID:     b.ListingID,
		CheckInDate:   normalizeDate(b.CheckInDate),
		CheckInTime:   nonEmpty(b.CheckInTime),
		CheckOutDate:  normalizeDate(b.CheckOutDate),
		CheckOutTime:  nonEmpty(b.CheckOutTime),
		Type:          strings.ToLower(strings.TrimSpace(b.Type)),
		Status:        b.Status,
	}

	if listing, ok := listings[b.ListingID]; ok {
		rec.ApartmentCode = listing.Code
		rec.ListingName = listing.Name
	} else if b.Listing != nil && b.Listing.InternalName != "" {
		if parsed, err := parse.ParseListingName(b.Listing.InternalName); err == nil {
			rec.ApartmentCode = parsed.Code
			if parsed.Name != "" {
				name := parsed.Name
				rec.ListingName = &name
			}
		}
	}
	if rec.ApartmentCode == "" {
		rec.ApartmentCode = b.ListingID
	}

	if b.Stats != nil && b.Stats.NightsCount > 0 {
		rec.Nights = b.Stats.NightsCount
	} else if in, err := booking.ParseDate(rec.CheckInDate); err == nil {
		if out, err := booking.ParseDate(rec.CheckOutDate); err == nil && in.Before(out) {
			rec.Nights = in.DaysUntil(out)
		}
	}

	if b.Guests != nil {
		rec.Adults = b.Guests.Adults
		rec.Children = b.Guests.Children
		rec.Babies = b.Guests.Infants
		rec.GuestCount = b.Guests.Adults + b.Guests.Children + b.Guests.Infants
	}
	if d := b.GuestsDetails; d != nil {
		rec.GuestName = strings.TrimSpace(d.Name)
		for _, g := range d.List {
			if rec.GuestEmail == "" && g.Email != "" {
				rec.GuestEmail = g.Email
			}
			for _, p := range g.Phones {
				if rec.GuestPhone == "" && p.ISO != "" {
					rec.GuestPhone = p.ISO
				}
			}
		}
	}

	rec.Platform = platformOf(b)
	if b.Price != nil {
		rec.PriceValue = b.Price.Total
		rec.PriceCurrency = nonEmpty(&b.Price.Currency)
	}
	return rec
}

// ToBookings converts a whole page set.
func ToBookings(items []store.ApiBooking, listings map[string]model.Listing) []model.Booking {
	out := make([]model.Booking, len(items))
	for i, b := range items {
		out[i] = ToBooking(b, listings)
	}
	return out
}

// platformOf prefers the partner channel over the raw source.
func platformOf(b store.ApiBooking) *string {
	if b.Partner != nil {
		if name := strings.TrimSpace(b.Partner.Name); name != "" {
			return &name
		}
	}
	if src := strings.TrimSpace(b.Source); src != "" {
		return &src
	}
	return nil
}

// normalizeDate cuts timestamps down to YYYY-MM-DD. Values that do not start
// with a valid date are kept as-is so normalization can reject them.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 10 {
		if d, err := booking.ParseDate(raw[:10]); err == nil {
			return d.String()
		}
	}
	return raw
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
