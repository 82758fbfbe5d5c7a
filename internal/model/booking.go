package model

import "time"

// Booking is one reservation record as written by the sync job. Dates are
// stored as YYYY-MM-DD strings so window queries compare lexicographically.
type Booking struct {
	ReservationID string  `gorm:"primaryKey;size:64" json:"reservationId"` // Upstream reservation id
	BookingCode   string  `gorm:"size:64" json:"bookingCode"`
	ListingID     string  `gorm:"index;size:64" json:"listingId"`
	ApartmentCode string  `gorm:"size:256" json:"apartmentCode"`
	ListingName   *string `gorm:"size:256" json:"listingName"`

	CheckInDate  string  `gorm:"index;size:32;not null" json:"checkInDate"`
	CheckInTime  *string `gorm:"size:16" json:"checkInTime"`
	CheckOutDate string  `gorm:"index;size:32;not null" json:"checkOutDate"`
	CheckOutTime *string `gorm:"size:16" json:"checkOutTime"`
	Nights       int     `json:"nights"`

	Type   string `gorm:"size:32;not null" json:"type"`
	Status string `gorm:"size:32" json:"status"`

	GuestName  string `gorm:"size:256" json:"guestName"`
	GuestEmail string `gorm:"size:256" json:"guestEmail"`
	GuestPhone string `gorm:"size:64" json:"guestPhone"`
	GuestCount int    `json:"guestCount"`
	Adults     int    `json:"adults"`
	Children   int    `json:"children"`
	Babies     int    `json:"babies"`

	Platform      *string  `gorm:"size:64" json:"platform"`
	PriceValue    *float64 `json:"priceValue"`
	PriceCurrency *string  `gorm:"size:8" json:"priceCurrency"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
