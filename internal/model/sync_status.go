package model

import "time"

// SyncStatusID is the primary key of the single sync status row.
const SyncStatusID = 1

// Sync run outcomes.
const (
	SyncStatusNever   = "never"
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncStatus records the outcome of the most recent synchronization run.
type SyncStatus struct {
	ID            int64 `gorm:"primaryKey"`
	LastSyncAt    *time.Time
	Status        string `gorm:"size:16;not null"`
	BookingsCount int
	ListingsCount int
	DurationMs    int64
	Error         string `gorm:"size:1024"`
	UpdatedAt     time.Time
}
