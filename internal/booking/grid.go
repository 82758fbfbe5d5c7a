package booking

import (
	"sort"
	"time"
)

// GuestStatus is a guest's situation on a given day.
type GuestStatus string

const (
	StatusCheckout GuestStatus = "checkout"
	StatusCheckin  GuestStatus = "checkin"
	StatusStaying  GuestStatus = "staying"
)

// display order within a day: departures, arrivals, continuing stays
var statusOrder = map[GuestStatus]int{
	StatusCheckout: 0,
	StatusCheckin:  1,
	StatusStaying:  2,
}

// StatusOn classifies day against a stay. The check-in test wins, so a stay
// starting and ending on the same day is a check-in.
func StatusOn(checkIn, checkOut, day Date) GuestStatus {
	switch {
	case day.Equal(checkIn):
		return StatusCheckin
	case day.Equal(checkOut):
		return StatusCheckout
	default:
		return StatusStaying
	}
}

var weekdayLabels = [...]string{
	time.Sunday:    "DOM",
	time.Monday:    "SEG",
	time.Tuesday:   "TER",
	time.Wednesday: "QUA",
	time.Thursday:  "QUI",
	time.Friday:    "SEX",
	time.Saturday:  "SÁB",
}

// WeekdayLabel returns the short pt-BR weekday label shown by the dashboard.
func WeekdayLabel(d Date) string {
	return weekdayLabels[d.Weekday()]
}

// GuestPresence is one guest entry in a day record.
type GuestPresence struct {
	ID            string      `json:"id"`
	BookingID     string      `json:"bookingId"`
	GuestName     string      `json:"guestName"`
	ApartmentCode string      `json:"apartmentCode"`
	Status        GuestStatus `json:"status"`
	CheckInDate   Date        `json:"checkInDate"`
	CheckInTime   *string     `json:"checkInTime"`
	CheckOutDate  Date        `json:"checkOutDate"`
	CheckOutTime  *string     `json:"checkOutTime"`
	GuestCount    int         `json:"guestCount"`
	Nights        int         `json:"nights"`
	Platform      string      `json:"platform"`
}

// DayRecord is one calendar date of the dashboard grid.
type DayRecord struct {
	Date      Date            `json:"date"`
	DayOfWeek string          `json:"dayOfWeek"`
	IsToday   bool            `json:"isToday"`
	Guests    []GuestPresence `json:"guests"`
}

// BuildDailyGrid returns one record per day in [from, to]. Every non-blocked
// interval covering a day contributes one guest entry, so a unit with a
// changeover shows both the departing and the arriving guest on that day.
func BuildDailyGrid(intervals []Interval, from, to, today Date) []DayRecord {
	if to.Before(from) {
		return []DayRecord{}
	}

	days := make([]DayRecord, 0, from.DaysUntil(to)+1)
	for d := range Days(from, to) {
		days = append(days, DayRecord{
			Date:      d,
			DayOfWeek: WeekdayLabel(d),
			IsToday:   d.Equal(today),
			Guests:    []GuestPresence{},
		})
	}

	// Each interval is expanded only over the days it touches; iterating the
	// collection in order keeps per-day entries in collection order.
	for _, iv := range intervals {
		if iv.IsBlocked() || !iv.Intersects(from, to) {
			continue
		}
		start := Max(iv.CheckIn, from)
		end := Min(iv.CheckOut, to)
		for d := range Days(start, end) {
			idx := from.DaysUntil(d)
			days[idx].Guests = append(days[idx].Guests, presenceOf(iv, d))
		}
	}

	for i := range days {
		guests := days[i].Guests
		sort.SliceStable(guests, func(a, b int) bool {
			return statusOrder[guests[a].Status] < statusOrder[guests[b].Status]
		})
	}
	return days
}

func presenceOf(iv Interval, d Date) GuestPresence {
	return GuestPresence{
		ID:            iv.ReservationID,
		BookingID:     iv.BookingCode,
		GuestName:     iv.GuestName,
		ApartmentCode: iv.UnitCode,
		Status:        StatusOn(iv.CheckIn, iv.CheckOut, d),
		CheckInDate:   iv.CheckIn,
		CheckInTime:   iv.CheckInTime,
		CheckOutDate:  iv.CheckOut,
		CheckOutTime:  iv.CheckOutTime,
		GuestCount:    iv.GuestCount,
		Nights:        iv.Nights,
		Platform:      iv.Platform,
	}
}
