package booking

import "sort"

// CalendarReservation is one interval as shown on a unit's calendar row.
type CalendarReservation struct {
	ID            string   `json:"id"`
	BookingID     string   `json:"bookingId"`
	GuestName     string   `json:"guestName"`
	GuestEmail    string   `json:"guestEmail"`
	GuestPhone    string   `json:"guestPhone"`
	Type          Type     `json:"type"`
	StartDate     Date     `json:"startDate"`
	EndDate       Date     `json:"endDate"`
	Platform      string   `json:"platform"`
	Nights        int      `json:"nights"`
	GuestCount    int      `json:"guestCount"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
	Babies        int      `json:"babies"`
	CheckInTime   *string  `json:"checkInTime"`
	CheckOutTime  *string  `json:"checkOutTime"`
	PriceValue    *float64 `json:"priceValue"`
	PriceCurrency *string  `json:"priceCurrency"`
}

// CalendarUnit is one listing row of the calendar.
type CalendarUnit struct {
	ID           string                `json:"id"`
	Code         string                `json:"code"`
	Name         *string               `json:"name"`
	Reservations []CalendarReservation `json:"reservations"`
}

// BuildCalendar groups every interval intersecting [from, to], blocked ones
// included, by unit. Reservations are ordered by check-in and units by code.
func BuildCalendar(intervals []Interval, from, to Date) []CalendarUnit {
	index := make(map[string]int)
	units := []CalendarUnit{}
	for _, iv := range intervals {
		if !iv.Intersects(from, to) {
			continue
		}
		i, ok := index[iv.ListingID]
		if !ok {
			i = len(units)
			index[iv.ListingID] = i
			units = append(units, CalendarUnit{
				ID:           iv.ListingID,
				Code:         iv.UnitCode,
				Name:         iv.ListingName,
				Reservations: []CalendarReservation{},
			})
		}
		units[i].Reservations = append(units[i].Reservations, calendarReservationOf(iv))
	}

	for i := range units {
		res := units[i].Reservations
		sort.SliceStable(res, func(a, b int) bool {
			return res[a].StartDate.Before(res[b].StartDate)
		})
	}
	sort.SliceStable(units, func(a, b int) bool {
		return units[a].Code < units[b].Code
	})
	return units
}

// CalendarFor returns the calendar row of a single listing, or false when the
// listing has no interval in the window.
func CalendarFor(intervals []Interval, listingID string, from, to Date) (CalendarUnit, bool) {
	var own []Interval
	for _, iv := range intervals {
		if iv.ListingID == listingID {
			own = append(own, iv)
		}
	}
	units := BuildCalendar(own, from, to)
	if len(units) == 0 {
		return CalendarUnit{}, false
	}
	return units[0], true
}

func calendarReservationOf(iv Interval) CalendarReservation {
	return CalendarReservation{
		ID:            iv.ReservationID,
		BookingID:     iv.BookingCode,
		GuestName:     iv.GuestName,
		GuestEmail:    iv.GuestEmail,
		GuestPhone:    iv.GuestPhone,
		Type:          iv.Type,
		StartDate:     iv.CheckIn,
		EndDate:       iv.CheckOut,
		Platform:      iv.Platform,
		Nights:        iv.Nights,
		GuestCount:    iv.GuestCount,
		Adults:        iv.Adults,
		Children:      iv.Children,
		Babies:        iv.Babies,
		CheckInTime:   iv.CheckInTime,
		CheckOutTime:  iv.CheckOutTime,
		PriceValue:    iv.PriceValue,
		PriceCurrency: iv.PriceCurrency,
	}
}
