package stays

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/model"
	"booking-dashboard-backend/internal/notification"
	"booking-dashboard-backend/internal/store"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	UpsertListingsFunc  func(ctx context.Context, items []store.ApiListing) (map[string]model.Listing, error)
	ReplaceBookingsFunc func(ctx context.Context, from, to booking.Date, bookings []model.Booking) (store.ReplaceResult, error)
	statuses            []model.SyncStatus
}

func (m *mockStore) UpsertListings(ctx context.Context, items []store.ApiListing) (map[string]model.Listing, error) {
	return m.UpsertListingsFunc(ctx, items)
}

func (m *mockStore) ReplaceBookings(ctx context.Context, from, to booking.Date, bookings []model.Booking) (store.ReplaceResult, error) {
	return m.ReplaceBookingsFunc(ctx, from, to, bookings)
}

func (m *mockStore) FetchIntervals(ctx context.Context, from, to booking.Date) ([]model.Booking, error) {
	return nil, nil
}

func (m *mockStore) FetchSyncStatus(ctx context.Context) (*model.SyncStatus, error) {
	if len(m.statuses) == 0 {
		return nil, nil
	}
	last := m.statuses[len(m.statuses)-1]
	return &last, nil
}

func (m *mockStore) SaveSyncStatus(ctx context.Context, status *model.SyncStatus) error {
	m.statuses = append(m.statuses, *status)
	return nil
}

func (m *mockStore) DB() *gorm.DB {
	return nil
}

// mockFetcher is a mock implementation of Fetcher.
type mockFetcher struct {
	FetchListingsFunc func(ctx context.Context) ([]store.ApiListing, error)
	FetchBookingsFunc func(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error)
}

func (m *mockFetcher) FetchListings(ctx context.Context) ([]store.ApiListing, error) {
	return m.FetchListingsFunc(ctx)
}

func (m *mockFetcher) FetchBookings(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error) {
	return m.FetchBookingsFunc(ctx, from, to)
}

func testConfig() *config.Config {
	return &config.Config{
		Stays:     config.StaysConfig{Enabled: true, PastDays: 7, FutureDays: 30},
		Dashboard: config.DashboardConfig{Timezone: "America/Sao_Paulo"},
	}
}

func listingFetcher(bookings []store.ApiBooking) *mockFetcher {
	return &mockFetcher{
		FetchListingsFunc: func(ctx context.Context) ([]store.ApiListing, error) {
			return []store.ApiListing{{ID: "L1", InternalName: "L-RL-17-101"}}, nil
		},
		FetchBookingsFunc: func(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error) {
			return bookings, nil
		},
	}
}

func TestSyncOnce_Success(t *testing.T) {
	// 2026-01-10 02:00 UTC is still the 9th in São Paulo.
	now := time.Date(2026, time.January, 10, 2, 0, 0, 0, time.UTC)

	upstream := []store.ApiBooking{
		{ID: "r1", ListingID: "L1", Type: "booked", CheckInDate: "2026-01-05", CheckOutDate: "2026-01-12"},
		{ID: "r2", ListingID: "L1", Type: "booked", CheckInDate: "2026-01-11", CheckOutDate: "2026-01-14"},
		{ID: "r3", ListingID: "L1", Type: "booked", CheckInDate: "2026-01-20", CheckOutDate: "2026-01-20"},
	}

	var gotFrom, gotTo booking.Date
	var stored []model.Booking
	ms := &mockStore{
		UpsertListingsFunc: func(ctx context.Context, items []store.ApiListing) (map[string]model.Listing, error) {
			return map[string]model.Listing{"L1": {ID: "L1", Code: "L-RL-17-101"}}, nil
		},
		ReplaceBookingsFunc: func(ctx context.Context, from, to booking.Date, bookings []model.Booking) (store.ReplaceResult, error) {
			gotFrom, gotTo, stored = from, to, bookings
			return store.ReplaceResult{Upserted: 3, Deleted: 1}, nil
		},
	}

	pool := notification.NewWorkerPool(1, nil, nil)
	service := NewService(testConfig(), ms, listingFetcher(upstream), pool)
	service.now = func() time.Time { return now }
	var hooked *Result
	service.OnSuccess(func(r *Result) { hooked = r })

	res, err := service.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Same(t, res, hooked)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.BookingsCount)
	assert.Equal(t, 1, res.ListingsCount)
	assert.Equal(t, int64(1), res.Deleted)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 1, res.Conflicts)

	assert.Equal(t, "2026-01-02", gotFrom.String())
	assert.Equal(t, "2026-02-08", gotTo.String())
	require.Len(t, stored, 3)
	assert.Equal(t, "L-RL-17-101", stored[0].ApartmentCode)

	select {
	case alert := <-pool.Jobs():
		assert.Equal(t, notification.Alert{ListingID: "L1", Conflicts: 1}, alert)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for conflict alert")
	}

	require.Len(t, ms.statuses, 2)
	assert.Equal(t, model.SyncStatusRunning, ms.statuses[0].Status)
	final := ms.statuses[1]
	assert.Equal(t, model.SyncStatusSuccess, final.Status)
	require.NotNil(t, final.LastSyncAt)
	assert.Equal(t, now, *final.LastSyncAt)
	assert.Equal(t, 3, final.BookingsCount)
}

func TestSyncOnce_FetchFailureKeepsStore(t *testing.T) {
	previous := time.Date(2026, time.January, 9, 12, 0, 0, 0, time.UTC)
	ms := &mockStore{
		UpsertListingsFunc: func(ctx context.Context, items []store.ApiListing) (map[string]model.Listing, error) {
			return map[string]model.Listing{}, nil
		},
		ReplaceBookingsFunc: func(ctx context.Context, from, to booking.Date, bookings []model.Booking) (store.ReplaceResult, error) {
			t.Error("store must not be replaced after a failed fetch")
			return store.ReplaceResult{}, nil
		},
		statuses: []model.SyncStatus{{Status: model.SyncStatusSuccess, LastSyncAt: &previous, BookingsCount: 10}},
	}
	fetcher := listingFetcher(nil)
	fetcher.FetchBookingsFunc = func(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error) {
		return nil, errors.Mark(errors.New("boom"), ErrUpstream)
	}

	service := NewService(testConfig(), ms, fetcher, nil)
	service.OnSuccess(func(*Result) { t.Error("hook must not run after a failed sync") })
	res, err := service.SyncOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")

	final := ms.statuses[len(ms.statuses)-1]
	assert.Equal(t, model.SyncStatusError, final.Status)
	assert.Equal(t, &previous, final.LastSyncAt)
	assert.Equal(t, 10, final.BookingsCount)
	assert.Contains(t, final.Error, "boom")
}

func TestSyncOnce_RejectsConcurrentRun(t *testing.T) {
	service := NewService(testConfig(), &mockStore{}, listingFetcher(nil), nil)
	service.running.Lock()
	defer service.running.Unlock()

	res, err := service.SyncOnce(context.Background())
	assert.ErrorIs(t, err, ErrSyncRunning)
	assert.False(t, res.Success)
}

func TestRun_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Stays.Enabled = false
	service := NewService(cfg, &mockStore{}, listingFetcher(nil), nil)
	assert.NoError(t, service.Run(context.Background()))
}

func TestRun_InvalidCron(t *testing.T) {
	cfg := testConfig()
	cfg.Stays.Cron = "not a cron"
	ms := &mockStore{
		UpsertListingsFunc: func(ctx context.Context, items []store.ApiListing) (map[string]model.Listing, error) {
			return map[string]model.Listing{}, nil
		},
		ReplaceBookingsFunc: func(ctx context.Context, from, to booking.Date, bookings []model.Booking) (store.ReplaceResult, error) {
			return store.ReplaceResult{}, nil
		},
	}
	service := NewService(cfg, ms, listingFetcher(nil), nil)
	err := service.Run(context.Background())
	assert.ErrorContains(t, err, "invalid cron expression")
}
