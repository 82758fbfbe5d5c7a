package model

import "time"

// Listing is a rentable unit as last reported by the upstream API.
type Listing struct {
	ID        string  `gorm:"primaryKey;size:64"` // Upstream listing id
	Code      string  `gorm:"index;size:128;not null"`
	Name      *string `gorm:"size:256"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
