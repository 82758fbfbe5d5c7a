package stays

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/model"
	"booking-dashboard-backend/internal/notification"
	"booking-dashboard-backend/internal/store"
)

// ErrSyncRunning is returned when a sync is requested while one is in flight.
var ErrSyncRunning = errors.New("sync already running")

// Fetcher reads listings and reservations from the booking API.
type Fetcher interface {
	FetchListings(ctx context.Context) ([]store.ApiListing, error)
	FetchBookings(ctx context.Context, from, to booking.Date) ([]store.ApiBooking, error)
}

// Result summarises one sync run.
type Result struct {
	RunID         string `json:"runId"`
	Success       bool   `json:"success"`
	BookingsCount int    `json:"bookingsCount"`
	ListingsCount int    `json:"listingsCount"`
	Deleted       int64  `json:"deleted"`
	Rejected      int    `json:"rejected"`
	Conflicts     int    `json:"conflicts"`
	DurationMs    int64  `json:"durationMs"`
	Error         string `json:"error,omitempty"`
}

// Service copies the upstream booking window into the store on a schedule.
type Service struct {
	cfg        *config.StaysConfig
	loc        *time.Location
	store      store.Store
	api        Fetcher
	workerPool *notification.WorkerPool
	now        func() time.Time
	running    sync.Mutex
	onSuccess  []func(*Result)
}

// NewService creates the sync service. pool may be nil to skip conflict alerts.
func NewService(cfg *config.Config, store store.Store, api Fetcher, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:        &cfg.Stays,
		loc:        cfg.Dashboard.Location(),
		store:      store,
		api:        api,
		workerPool: pool,
		now:        time.Now,
	}
}

// OnSuccess registers fn to run after every successful sync, e.g. to drop
// cached views.
func (s *Service) OnSuccess(fn func(*Result)) {
	s.onSuccess = append(s.onSuccess, fn)
}

// Window returns the upstream window synced on the given day.
func (s *Service) Window(today booking.Date) (from, to booking.Date) {
	return today.AddDays(-s.cfg.PastDays), today.AddDays(s.cfg.FutureDays)
}

// Run syncs once, then on the cron schedule, or every interval when no cron
// expression is configured. It blocks until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		log.Println("Stays sync is disabled. Not starting.")
		return nil
	}
	log.Println("Starting stays sync service...")

	s.runLogged(ctx)

	if s.cfg.Cron != "" {
		c := cron.New(cron.WithLocation(s.loc))
		if _, err := c.AddFunc(s.cfg.Cron, func() { s.runLogged(ctx) }); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", s.cfg.Cron, err)
		}
		log.Printf("Scheduling sync with cron: %s", s.cfg.Cron)
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		log.Println("Stays sync service shutting down.")
		return nil
	}

	log.Printf("Scheduling sync every %s", s.cfg.Interval)
	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Stays sync service shutting down.")
			return nil
		case <-timer.C:
			s.runLogged(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) runLogged(ctx context.Context) {
	if _, err := s.SyncOnce(ctx); err != nil {
		log.Printf("Scheduled sync failed: %v", err)
	}
}

// SyncOnce performs one full sync. The returned Result is always populated,
// including on failure.
func (s *Service) SyncOnce(ctx context.Context) (*Result, error) {
	if !s.running.TryLock() {
		return &Result{Error: ErrSyncRunning.Error()}, ErrSyncRunning
	}
	defer s.running.Unlock()

	start := s.now()
	res := &Result{RunID: uuid.NewString()}
	log.Printf("[sync %s] Executing sync cycle...", res.RunID)

	prev, err := s.store.FetchSyncStatus(ctx)
	if err != nil {
		log.Printf("[sync %s] Could not read previous sync status: %v", res.RunID, err)
	}
	status := &model.SyncStatus{Status: model.SyncStatusRunning}
	if prev != nil {
		status.LastSyncAt = prev.LastSyncAt
		status.BookingsCount = prev.BookingsCount
		status.ListingsCount = prev.ListingsCount
	}
	s.saveStatus(ctx, res.RunID, status)

	err = s.sync(ctx, res)
	res.DurationMs = s.now().Sub(start).Milliseconds()
	status.DurationMs = res.DurationMs
	if err != nil {
		res.Error = err.Error()
		status.Status = model.SyncStatusError
		status.Error = res.Error
		s.saveStatus(ctx, res.RunID, status)
		log.Printf("[sync %s] Sync cycle failed after %dms: %v", res.RunID, res.DurationMs, err)
		return res, err
	}

	res.Success = true
	finished := s.now()
	status.Status = model.SyncStatusSuccess
	status.LastSyncAt = &finished
	status.BookingsCount = res.BookingsCount
	status.ListingsCount = res.ListingsCount
	status.Error = ""
	s.saveStatus(ctx, res.RunID, status)
	log.Printf("[sync %s] Sync cycle finished in %dms: %d bookings, %d listings, %d deleted, %d conflicts.",
		res.RunID, res.DurationMs, res.BookingsCount, res.ListingsCount, res.Deleted, res.Conflicts)
	for _, fn := range s.onSuccess {
		fn(res)
	}
	return res, nil
}

func (s *Service) sync(ctx context.Context, res *Result) error {
	// Step 1: listings, so bookings can carry unit codes
	items, err := s.api.FetchListings(ctx)
	if err != nil {
		return err
	}
	listings, err := s.store.UpsertListings(ctx, items)
	if err != nil {
		return err
	}
	res.ListingsCount = len(listings)

	// Step 2: the booking window. A failed fetch aborts before the store is
	// touched so the last good snapshot survives.
	from, to := s.Window(booking.DateOf(s.now().In(s.loc)))
	raw, err := s.api.FetchBookings(ctx, from, to)
	if err != nil {
		return err
	}
	records := ToBookings(raw, listings)
	res.BookingsCount = len(records)

	replaced, err := s.store.ReplaceBookings(ctx, from, to, records)
	if err != nil {
		return err
	}
	res.Deleted = replaced.Deleted

	// Step 3: data-quality alerts
	snap := booking.Normalize(records)
	res.Rejected = len(snap.Rejected)
	for _, r := range snap.Rejected {
		log.Printf("[sync %s] Rejected reservation %s (%s)", res.RunID, r.ReservationID, r.Reason)
	}
	pairs := booking.DetectConflicts(snap.Intervals)
	res.Conflicts = len(pairs)
	s.dispatchAlerts(res.RunID, pairs)
	return nil
}

func (s *Service) dispatchAlerts(runID string, pairs []booking.ConflictPair) {
	if s.workerPool == nil || len(pairs) == 0 {
		return
	}
	perListing := make(map[string]int)
	for _, p := range pairs {
		perListing[p.ListingID]++
	}
	listings := booking.ConflictingListings(pairs)
	log.Printf("[sync %s] Dispatching conflict alerts for %d listings", runID, len(listings))
	for _, id := range listings {
		s.workerPool.Dispatch(notification.Alert{ListingID: id, Conflicts: perListing[id]})
	}
}

func (s *Service) saveStatus(ctx context.Context, runID string, status *model.SyncStatus) {
	if err := s.store.SaveSyncStatus(ctx, status); err != nil {
		log.Printf("[sync %s] Failed to save sync status: %v", runID, err)
	}
}
