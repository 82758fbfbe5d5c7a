package booking

import (
	"time"

	"booking-dashboard-backend/internal/model"
)

// SyncInfo is the last synchronization outcome as reported to clients.
type SyncInfo struct {
	LastSyncAt    *time.Time `json:"lastSyncAt"`
	Status        string     `json:"status"`
	BookingsCount int        `json:"bookingsCount"`
	ListingsCount int        `json:"listingsCount"`
	DurationMs    int64      `json:"durationMs"`
}

// SyncInfoOf converts a stored status, nil meaning no sync has run yet.
func SyncInfoOf(st *model.SyncStatus) SyncInfo {
	if st == nil {
		return SyncInfo{Status: model.SyncStatusNever}
	}
	info := SyncInfo{
		LastSyncAt:    st.LastSyncAt,
		Status:        st.Status,
		BookingsCount: st.BookingsCount,
		ListingsCount: st.ListingsCount,
		DurationMs:    st.DurationMs,
	}
	if info.Status == "" {
		info.Status = model.SyncStatusNever
	}
	return info
}

// Dashboard is the operations view: day grid, occupancy and origins.
type Dashboard struct {
	WeekData            []DayRecord         `json:"weekData"`
	OccupancyStats      OccupancySnapshot   `json:"occupancyStats"`
	OccupancyNext30Days OccupancySnapshot   `json:"occupancyNext30Days"`
	ReservationOrigins  []ReservationOrigin `json:"reservationOrigins"`
	OccupancyTrend      []TrendPoint        `json:"occupancyTrend"`
	AvailableUnits      []string            `json:"availableUnits"`
	LastSyncAt          *time.Time          `json:"lastSyncAt"`
	SyncStatus          string              `json:"syncStatus"`
}

// Calendar is the per-unit reservation view.
type Calendar struct {
	Units      []CalendarUnit `json:"units"`
	LastSyncAt *time.Time     `json:"lastSyncAt"`
	SyncStatus string         `json:"syncStatus"`
}

// Window is an inclusive date range.
type Window struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// BuildDashboard derives every dashboard figure from one interval collection.
// The unit total is taken from the whole collection, blocked intervals
// included, so it matches the calendar built from the same collection.
func BuildDashboard(intervals []Interval, grid Window, today Date, palette Palette, sync SyncInfo) Dashboard {
	units := Units(intervals)
	total := len(units)
	return Dashboard{
		WeekData:            BuildDailyGrid(intervals, grid.From, grid.To, today),
		OccupancyStats:      OccupancyOn(intervals, total, today),
		OccupancyNext30Days: OccupancyForward(intervals, total, today),
		ReservationOrigins:  ReservationOrigins(intervals, today, palette),
		OccupancyTrend:      OccupancyTrend(intervals, total, today),
		AvailableUnits:      AvailableUnitCodes(intervals, units, today),
		LastSyncAt:          sync.LastSyncAt,
		SyncStatus:          sync.Status,
	}
}

// BuildCalendarView wraps BuildCalendar with sync metadata.
func BuildCalendarView(intervals []Interval, w Window, sync SyncInfo) Calendar {
	return Calendar{
		Units:      BuildCalendar(intervals, w.From, w.To),
		LastSyncAt: sync.LastSyncAt,
		SyncStatus: sync.Status,
	}
}
