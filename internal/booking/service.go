package booking

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"booking-dashboard-backend/internal/model"
)

// IntervalSource returns every stored record whose stay intersects [from, to].
type IntervalSource interface {
	FetchIntervals(ctx context.Context, from, to Date) ([]model.Booking, error)
}

// SyncStatusSource returns the last sync status, or nil if none was recorded.
type SyncStatusSource interface {
	FetchSyncStatus(ctx context.Context) (*model.SyncStatus, error)
}

// Options tunes the windows and presentation of the views.
type Options struct {
	Location   *time.Location
	PastDays   int
	FutureDays int
	Palette    Palette
	Now        func() time.Time
}

// Service fetches one snapshot per request and projects it into the views.
// It holds no state between requests.
type Service struct {
	intervals IntervalSource
	status    SyncStatusSource
	opts      Options
}

// NewService creates a view service over the given collaborators.
func NewService(intervals IntervalSource, status SyncStatusSource, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PastDays <= 0 {
		opts.PastDays = 365
	}
	if opts.FutureDays <= 0 {
		opts.FutureDays = 365
	}
	if opts.Palette.Colors == nil {
		opts.Palette = DefaultPalette
	}
	if opts.Palette.Default == "" {
		opts.Palette.Default = DefaultPalette.Default
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{intervals: intervals, status: status, opts: opts}
}

// Unified is the combined dashboard and calendar response.
type Unified struct {
	Dashboard Dashboard `json:"dashboard"`
	Calendar  Calendar  `json:"calendar"`
	Sync      SyncInfo  `json:"sync"`
	Meta      Meta      `json:"meta"`
}

// Meta describes how a response was produced.
type Meta struct {
	GeneratedAt   time.Time   `json:"generatedAt"`
	QueryTimeMs   int64       `json:"queryTimeMs"`
	BookingsCount int         `json:"bookingsCount"`
	RejectedCount int         `json:"rejectedCount"`
	Rejected      []Rejection `json:"rejected,omitempty"`
	Window        Window      `json:"window"`
}

// Today returns the current calendar date in the configured timezone.
func (s *Service) Today() Date {
	return DateOf(s.opts.Now().In(s.opts.Location))
}

// DefaultWindow is today minus PastDays to today plus FutureDays.
func (s *Service) DefaultWindow() Window {
	today := s.Today()
	return Window{From: today.AddDays(-s.opts.PastDays), To: today.AddDays(s.opts.FutureDays)}
}

// Windows resolves the calendar window from optional bounds and returns it
// with the fetch window, which is the union of the calendar and default windows.
func (s *Service) Windows(from, to Date) (calendar, fetch Window) {
	def := s.DefaultWindow()
	calendar = def
	if !from.IsZero() {
		calendar.From = from
	}
	if !to.IsZero() {
		calendar.To = to
	}
	fetch = Window{From: Min(calendar.From, def.From), To: Max(calendar.To, def.To)}
	return calendar, fetch
}

// load issues the interval and sync-status reads concurrently and waits for both.
func (s *Service) load(ctx context.Context, w Window) ([]model.Booking, SyncInfo, error) {
	var (
		records []model.Booking
		status  *model.SyncStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.intervals.FetchIntervals(gctx, w.From, w.To)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = s.status.FetchSyncStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, SyncInfo{}, err
	}
	return records, SyncInfoOf(status), nil
}

// Unified builds the dashboard and calendar from a single fetch. Zero from/to
// fall back to the default window. The dashboard grid spans the fetch window,
// so it grows when from/to reach past the default range.
func (s *Service) Unified(ctx context.Context, from, to Date) (*Unified, error) {
	start := s.opts.Now()
	calWindow, fetchWindow := s.Windows(from, to)

	records, sync, err := s.load(ctx, fetchWindow)
	if err != nil {
		return nil, err
	}
	snap := Normalize(records)
	if len(snap.Rejected) > 0 {
		log.Printf("Excluded %d malformed booking records from aggregation", len(snap.Rejected))
	}

	today := s.Today()
	resp := &Unified{
		Dashboard: BuildDashboard(snap.Intervals, fetchWindow, today, s.opts.Palette, sync),
		Calendar:  BuildCalendarView(snap.Intervals, calWindow, sync),
		Sync:      sync,
	}
	end := s.opts.Now()
	resp.Meta = Meta{
		GeneratedAt:   end.UTC(),
		QueryTimeMs:   end.Sub(start).Milliseconds(),
		BookingsCount: len(records),
		RejectedCount: len(snap.Rejected),
		Rejected:      snap.Rejected,
		Window:        fetchWindow,
	}
	return resp, nil
}

// Dashboard builds the dashboard over the default window.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	w := s.DefaultWindow()
	records, sync, err := s.load(ctx, w)
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(Normalize(records).Intervals, w, s.Today(), s.opts.Palette, sync)
	return &d, nil
}

// Calendar builds the calendar for the window resolved from from/to.
func (s *Service) Calendar(ctx context.Context, from, to Date) (*Calendar, error) {
	w, _ := s.Windows(from, to)
	records, sync, err := s.load(ctx, w)
	if err != nil {
		return nil, err
	}
	c := BuildCalendarView(Normalize(records).Intervals, w, sync)
	return &c, nil
}

// UnitCalendar returns one listing's calendar row for the resolved window.
func (s *Service) UnitCalendar(ctx context.Context, listingID string, from, to Date) (CalendarUnit, bool, error) {
	w, _ := s.Windows(from, to)
	records, err := s.intervals.FetchIntervals(ctx, w.From, w.To)
	if err != nil {
		return CalendarUnit{}, false, err
	}
	unit, ok := CalendarFor(Normalize(records).Intervals, listingID, w.From, w.To)
	return unit, ok, nil
}

// ConflictReport is the detector output for a window.
type ConflictReport struct {
	Window    Window         `json:"window"`
	Checked   int            `json:"checked"`
	Conflicts []ConflictPair `json:"conflicts"`
	Rejected  []Rejection    `json:"rejected"`
}

// Conflicts runs the conflict detector over the stored records in the window.
func (s *Service) Conflicts(ctx context.Context, from, to Date) (*ConflictReport, error) {
	w, _ := s.Windows(from, to)
	records, err := s.intervals.FetchIntervals(ctx, w.From, w.To)
	if err != nil {
		return nil, err
	}
	return CheckConflicts(records, w), nil
}

// CheckConflicts normalizes records and detects conflicts among them.
func CheckConflicts(records []model.Booking, w Window) *ConflictReport {
	snap := Normalize(records)
	rejected := snap.Rejected
	if rejected == nil {
		rejected = []Rejection{}
	}
	return &ConflictReport{
		Window:    w,
		Checked:   len(snap.Intervals),
		Conflicts: DetectConflicts(snap.Intervals),
		Rejected:  rejected,
	}
}
