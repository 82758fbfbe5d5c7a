package booking

import (
	"strings"

	"booking-dashboard-backend/internal/model"
)

// Type classifies an interval. Blocked intervals never count as guest occupancy.
type Type string

const (
	TypeReserved    Type = "reserved"
	TypeBlocked     Type = "blocked"
	TypeProvisional Type = "provisional"
)

// OtherPlatform labels intervals whose source platform is unknown.
const OtherPlatform = "Other"

// ParseType maps a raw upstream type onto the three interval types.
// Anything that is neither blocked nor provisional is a reservation.
func ParseType(raw string) Type {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(TypeBlocked):
		return TypeBlocked
	case string(TypeProvisional):
		return TypeProvisional
	default:
		return TypeReserved
	}
}

// Interval is a normalized booking covering the half-open range [CheckIn, CheckOut).
type Interval struct {
	ReservationID string
	BookingCode   string
	ListingID     string
	UnitCode      string
	ListingName   *string

	CheckIn      Date
	CheckOut     Date
	CheckInTime  *string
	CheckOutTime *string
	Nights       int

	Type   Type
	Status string

	GuestName  string
	GuestEmail string
	GuestPhone string
	GuestCount int
	Adults     int
	Children   int
	Babies     int

	Platform      string
	PriceValue    *float64
	PriceCurrency *string
}

// IsBlocked reports whether the interval is an owner/maintenance block.
func (i Interval) IsBlocked() bool { return i.Type == TypeBlocked }

// Covers is the day-coverage test used by the daily grid and occupancy
// counts. Both ends are inclusive, so a checkout day still counts for the
// departing guest.
func (i Interval) Covers(d Date) bool {
	return !d.Before(i.CheckIn) && !d.After(i.CheckOut)
}

// Intersects is the window test used by the calendar view.
func (i Interval) Intersects(from, to Date) bool {
	return !i.CheckOut.Before(from) && !i.CheckIn.After(to)
}

// Rejection reasons.
const (
	ReasonMissingListing  = "missing_listing"
	ReasonInvalidCheckIn  = "invalid_check_in"
	ReasonInvalidCheckOut = "invalid_check_out"
	ReasonEmptyInterval   = "empty_interval"
)

// Rejection describes a record that was excluded from aggregation.
type Rejection struct {
	ReservationID string `json:"reservationId"`
	ListingID     string `json:"listingId"`
	CheckInDate   string `json:"checkInDate"`
	CheckOutDate  string `json:"checkOutDate"`
	Reason        string `json:"reason"`
}

// Snapshot is an immutable set of normalized intervals plus the records that
// could not be normalized.
type Snapshot struct {
	Intervals []Interval
	Rejected  []Rejection
}

// Normalize converts stored records into intervals. Malformed records are
// reported in Rejected and never abort the conversion.
func Normalize(records []model.Booking) Snapshot {
	snap := Snapshot{Intervals: make([]Interval, 0, len(records))}
	for _, r := range records {
		iv, reason := normalizeRecord(r)
		if reason != "" {
			snap.Rejected = append(snap.Rejected, Rejection{
				ReservationID: r.ReservationID,
				ListingID:     r.ListingID,
				CheckInDate:   r.CheckInDate,
				CheckOutDate:  r.CheckOutDate,
				Reason:        reason,
			})
			continue
		}
		snap.Intervals = append(snap.Intervals, iv)
	}
	return snap
}

func normalizeRecord(r model.Booking) (Interval, string) {
	listingID := strings.TrimSpace(r.ListingID)
	if listingID == "" {
		return Interval{}, ReasonMissingListing
	}
	checkIn, err := ParseDate(r.CheckInDate)
	if err != nil {
		return Interval{}, ReasonInvalidCheckIn
	}
	checkOut, err := ParseDate(r.CheckOutDate)
	if err != nil {
		return Interval{}, ReasonInvalidCheckOut
	}
	if !checkIn.Before(checkOut) {
		return Interval{}, ReasonEmptyInterval
	}

	unitCode := strings.TrimSpace(r.ApartmentCode)
	if unitCode == "" {
		unitCode = listingID
	}
	platform := OtherPlatform
	if r.Platform != nil && strings.TrimSpace(*r.Platform) != "" {
		platform = strings.TrimSpace(*r.Platform)
	}
	guestCount := r.GuestCount
	if guestCount == 0 {
		guestCount = r.Adults + r.Children + r.Babies
	}

	return Interval{
		ReservationID: r.ReservationID,
		BookingCode:   r.BookingCode,
		ListingID:     listingID,
		UnitCode:      unitCode,
		ListingName:   r.ListingName,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		CheckInTime:   r.CheckInTime,
		CheckOutTime:  r.CheckOutTime,
		Nights:        checkIn.DaysUntil(checkOut),
		Type:          ParseType(r.Type),
		Status:        r.Status,
		GuestName:     r.GuestName,
		GuestEmail:    r.GuestEmail,
		GuestPhone:    r.GuestPhone,
		GuestCount:    guestCount,
		Adults:        r.Adults,
		Children:      r.Children,
		Babies:        r.Babies,
		Platform:      platform,
		PriceValue:    r.PriceValue,
		PriceCurrency: r.PriceCurrency,
	}, ""
}

// Unit is a rentable listing derived from the intervals that reference it.
type Unit struct {
	ListingID string
	Code      string
	Name      *string
}

// Units returns the distinct listings in first-seen order. The first interval
// seen for a listing supplies its code and name.
func Units(intervals []Interval) []Unit {
	seen := make(map[string]struct{}, len(intervals))
	var units []Unit
	for _, iv := range intervals {
		if _, ok := seen[iv.ListingID]; ok {
			continue
		}
		seen[iv.ListingID] = struct{}{}
		units = append(units, Unit{ListingID: iv.ListingID, Code: iv.UnitCode, Name: iv.ListingName})
	}
	return units
}
