package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/model"
	"booking-dashboard-backend/internal/parse"
)

const upsertBatchSize = 500

// deleteBatchSize caps the ids bound in one stale-booking DELETE.
var deleteBatchSize = 1000

// columns overwritten when a reservation id already exists
var bookingUpdateColumns = []string{
	"booking_code", "listing_id", "apartment_code", "listing_name",
	"check_in_date", "check_in_time", "check_out_date", "check_out_time", "nights",
	"type", "status",
	"guest_name", "guest_email", "guest_phone", "guest_count", "adults", "children", "babies",
	"platform", "price_value", "price_currency",
	"updated_at",
}

// Store defines the interface for all database operations.
type Store interface {
	UpsertListings(ctx context.Context, items []ApiListing) (map[string]model.Listing, error)
	ReplaceBookings(ctx context.Context, from, to booking.Date, bookings []model.Booking) (ReplaceResult, error)
	FetchIntervals(ctx context.Context, from, to booking.Date) ([]model.Booking, error)
	FetchSyncStatus(ctx context.Context) (*model.SyncStatus, error)
	SaveSyncStatus(ctx context.Context, status *model.SyncStatus) error
	DB() *gorm.DB
}

// ReplaceResult reports the effect of ReplaceBookings.
type ReplaceResult struct {
	Upserted int64
	Deleted  int64
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertListings parses upstream listing names and upserts the listings.
// It returns the upserted listings keyed by id.
func (s *gormStore) UpsertListings(ctx context.Context, items []ApiListing) (map[string]model.Listing, error) {
	byID := make(map[string]model.Listing, len(items))
	var listings []model.Listing
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := byID[item.ID]; dup {
			continue
		}
		listing := prepareListing(item)
		byID[item.ID] = listing
		listings = append(listings, listing)
	}

	if len(listings) == 0 {
		return byID, nil
	}

	log.Printf("Batch upserting %d listings...", len(listings))
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "updated_at"}),
	}).CreateInBatches(&listings, upsertBatchSize).Error; err != nil {
		return nil, fmt.Errorf("batch upsert listings failed: %w", err)
	}
	return byID, nil
}

func prepareListing(item ApiListing) model.Listing {
	parsed, err := parse.ParseListingName(item.InternalName)
	if err != nil {
		log.Printf("Error parsing name for listing %s (%q): %v", item.ID, item.InternalName, err)
		return model.Listing{ID: item.ID, Code: item.ID}
	}
	listing := model.Listing{ID: item.ID, Code: parsed.Code}
	if parsed.Name != "" {
		name := parsed.Name
		listing.Name = &name
	}
	return listing
}

// ReplaceBookings makes the stored window [from, to] match bookings: every
// record is upserted by reservation id, then stored records intersecting the
// window that were not received are deleted. An empty batch deletes nothing.
func (s *gormStore) ReplaceBookings(ctx context.Context, from, to booking.Date, bookings []model.Booking) (ReplaceResult, error) {
	var result ReplaceResult
	unique := dedupeBookings(bookings)
	if len(unique) == 0 {
		log.Println("No bookings received; leaving stored window untouched.")
		return result, nil
	}
	if n := len(bookings) - len(unique); n > 0 {
		log.Printf("Dropped %d duplicate reservation ids from batch", n)
	}

	received := make(map[string]struct{}, len(unique))
	for _, b := range unique {
		received[b.ReservationID] = struct{}{}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reservation_id"}},
			DoUpdates: clause.AssignmentColumns(bookingUpdateColumns),
		}).CreateInBatches(&unique, upsertBatchSize)
		if res.Error != nil {
			return fmt.Errorf("batch upsert bookings failed: %w", res.Error)
		}
		result.Upserted = res.RowsAffected

		var stored []string
		if err := tx.Model(&model.Booking{}).
			Where("check_out_date >= ? AND check_in_date <= ?", from.String(), to.String()).
			Pluck("reservation_id", &stored).Error; err != nil {
			return fmt.Errorf("failed to list stored bookings: %w", err)
		}
		stale := slices.DeleteFunc(stored, func(id string) bool {
			_, ok := received[id]
			return ok
		})

		for chunk := range slices.Chunk(stale, deleteBatchSize) {
			res := tx.Where("reservation_id IN ?", chunk).Delete(&model.Booking{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete stale bookings: %w", res.Error)
			}
			result.Deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return ReplaceResult{}, err
	}
	return result, nil
}

// dedupeBookings keeps the last record seen for each reservation id, in
// first-seen position.
func dedupeBookings(bookings []model.Booking) []model.Booking {
	index := make(map[string]int, len(bookings))
	out := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ReservationID == "" {
			continue
		}
		if i, ok := index[b.ReservationID]; ok {
			out[i] = b
			continue
		}
		index[b.ReservationID] = len(out)
		out = append(out, b)
	}
	return out
}

// FetchIntervals returns every stored booking whose stay intersects [from, to],
// ordered by check-in date then reservation id.
func (s *gormStore) FetchIntervals(ctx context.Context, from, to booking.Date) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("check_out_date >= ? AND check_in_date <= ?", from.String(), to.String()).
		Order("check_in_date, reservation_id").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}

// FetchSyncStatus returns the last sync status, or nil if no sync has run.
func (s *gormStore) FetchSyncStatus(ctx context.Context) (*model.SyncStatus, error) {
	var status model.SyncStatus
	err := s.db.WithContext(ctx).First(&status, model.SyncStatusID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sync status: %w", err)
	}
	return &status, nil
}

// SaveSyncStatus writes the single sync status row.
func (s *gormStore) SaveSyncStatus(ctx context.Context, status *model.SyncStatus) error {
	status.ID = model.SyncStatusID
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(status).Error; err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}
