package booking

import (
	"math"
	"sort"
	"strings"
)

const (
	forwardDays = 30
	trendDays   = 30
)

// OccupancySnapshot counts units for a day, or unit-days for a period.
type OccupancySnapshot struct {
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
	Total     int `json:"total"`
}

// TrendPoint is the occupancy rate of one day, in percent with one decimal.
type TrendPoint struct {
	Date Date    `json:"date"`
	Rate float64 `json:"rate"`
}

// ReservationOrigin counts reservations coming from one platform.
type ReservationOrigin struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// occupiedByDay returns, for each day in [from, to], the number of distinct
// units with at least one non-blocked interval covering that day.
func occupiedByDay(intervals []Interval, from, to Date) []int {
	if to.Before(from) {
		return nil
	}
	n := from.DaysUntil(to) + 1
	sets := make([]map[string]struct{}, n)
	for _, iv := range intervals {
		if iv.IsBlocked() || !iv.Intersects(from, to) {
			continue
		}
		for d := range Days(Max(iv.CheckIn, from), Min(iv.CheckOut, to)) {
			idx := from.DaysUntil(d)
			if sets[idx] == nil {
				sets[idx] = make(map[string]struct{})
			}
			sets[idx][iv.ListingID] = struct{}{}
		}
	}
	counts := make([]int, n)
	for i, s := range sets {
		counts[i] = len(s)
	}
	return counts
}

// OccupiedUnits returns the listing ids occupied on day.
func OccupiedUnits(intervals []Interval, day Date) map[string]struct{} {
	occupied := make(map[string]struct{})
	for _, iv := range intervals {
		if !iv.IsBlocked() && iv.Covers(day) {
			occupied[iv.ListingID] = struct{}{}
		}
	}
	return occupied
}

// OccupancyOn returns the snapshot for day. total is the number of distinct
// units in the whole collection, so occupied never exceeds it.
func OccupancyOn(intervals []Interval, total int, day Date) OccupancySnapshot {
	occupied := len(OccupiedUnits(intervals, day))
	return OccupancySnapshot{
		Available: total - occupied,
		Occupied:  occupied,
		Total:     total,
	}
}

// OccupancyForward sums unit-days over the 30 days starting at today.
func OccupancyForward(intervals []Interval, total int, today Date) OccupancySnapshot {
	var occupied int
	for _, c := range occupiedByDay(intervals, today, today.AddDays(forwardDays-1)) {
		occupied += c
	}
	totalUnitDays := total * forwardDays
	return OccupancySnapshot{
		Available: totalUnitDays - occupied,
		Occupied:  occupied,
		Total:     totalUnitDays,
	}
}

// OccupancyTrend returns 31 points, from today-30 to today inclusive.
func OccupancyTrend(intervals []Interval, total int, today Date) []TrendPoint {
	from := today.AddDays(-trendDays)
	counts := occupiedByDay(intervals, from, today)
	points := make([]TrendPoint, 0, len(counts))
	for i, c := range counts {
		points = append(points, TrendPoint{
			Date: from.AddDays(i),
			Rate: occupancyRate(c, total),
		})
	}
	return points
}

func occupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*1000) / 10
}

// Palette maps platform names to display colors.
type Palette struct {
	Colors  map[string]string
	Default string
}

// DefaultPalette holds the colors the dashboard uses out of the box.
var DefaultPalette = Palette{
	Colors: map[string]string{
		"airbnb":      "#FF5A5F",
		"booking.com": "#003580",
		"expedia":     "#FFC72C",
		"vrbo":        "#1C4695",
		"direct":      "#10B981",
		"website":     "#10B981",
	},
	Default: "#6B7280",
}

// ColorOf returns the color for platform, matching names case-insensitively.
func (p Palette) ColorOf(platform string) string {
	if c, ok := p.Colors[strings.ToLower(strings.TrimSpace(platform))]; ok {
		return c
	}
	for name, c := range p.Colors {
		if strings.EqualFold(name, platform) {
			return c
		}
	}
	return p.Default
}

// ReservationOrigins counts non-blocked intervals touching the next 30 days by
// platform, most frequent first. Equal counts keep first-seen order.
func ReservationOrigins(intervals []Interval, today Date, palette Palette) []ReservationOrigin {
	windowEnd := today.AddDays(forwardDays)
	index := make(map[string]int)
	origins := []ReservationOrigin{}
	for _, iv := range intervals {
		if iv.IsBlocked() || !iv.Intersects(today, windowEnd) {
			continue
		}
		name := iv.Platform
		if name == "" {
			name = OtherPlatform
		}
		i, ok := index[name]
		if !ok {
			i = len(origins)
			index[name] = i
			origins = append(origins, ReservationOrigin{Name: name, Color: palette.ColorOf(name)})
		}
		origins[i].Count++
	}
	sort.SliceStable(origins, func(a, b int) bool {
		return origins[a].Count > origins[b].Count
	})
	return origins
}

// AvailableUnitCodes returns the sorted codes of units with no guest on day.
func AvailableUnitCodes(intervals []Interval, units []Unit, day Date) []string {
	occupied := OccupiedUnits(intervals, day)
	codes := []string{}
	for _, u := range units {
		if _, ok := occupied[u.ListingID]; !ok {
			codes = append(codes, u.Code)
		}
	}
	sort.Strings(codes)
	return codes
}
