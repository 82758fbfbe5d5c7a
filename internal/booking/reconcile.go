package booking

import (
	"sort"
	"strings"

	"booking-dashboard-backend/internal/model"
)

// Breakdown is a count of missing records sharing one attribute value.
type Breakdown struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DateGroup lists missing records sharing a check-in date.
type DateGroup struct {
	CheckInDate string          `json:"checkInDate"`
	Records     []model.Booking `json:"records"`
}

// Reconciliation is the set difference between two snapshots of the same
// reservations. Source is the reference (the upstream API), Target the copy
// (the store). Duplicate keys are reported once per raw record.
type Reconciliation struct {
	SourceCount int  `json:"sourceCount"`
	TargetCount int  `json:"targetCount"`
	InSync      bool `json:"inSync"`

	Missing []model.Booking `json:"missing"`
	Extra   []model.Booking `json:"extra"`

	MissingByCheckIn  []DateGroup `json:"missingByCheckIn"`
	MissingByType     []Breakdown `json:"missingByType"`
	MissingByPlatform []Breakdown `json:"missingByPlatform"`
	MissingByStatus   []Breakdown `json:"missingByStatus"`
}

// Reconcile computes missing = source − target and extra = target − source
// by reservation id.
func Reconcile(source, target []model.Booking) Reconciliation {
	sourceKeys := keySet(source)
	targetKeys := keySet(target)

	rec := Reconciliation{
		SourceCount: len(source),
		TargetCount: len(target),
		Missing:     []model.Booking{},
		Extra:       []model.Booking{},
	}
	for _, r := range source {
		if _, ok := targetKeys[r.ReservationID]; !ok {
			rec.Missing = append(rec.Missing, r)
		}
	}
	for _, r := range target {
		if _, ok := sourceKeys[r.ReservationID]; !ok {
			rec.Extra = append(rec.Extra, r)
		}
	}
	rec.InSync = len(rec.Missing) == 0 && len(rec.Extra) == 0 && len(source) == len(target)

	rec.MissingByCheckIn = groupByCheckIn(rec.Missing)
	rec.MissingByType = breakdown(rec.Missing, func(r model.Booking) string { return orDefault(r.Type, "unknown") })
	rec.MissingByPlatform = breakdown(rec.Missing, func(r model.Booking) string {
		if r.Platform == nil {
			return OtherPlatform
		}
		return orDefault(*r.Platform, OtherPlatform)
	})
	rec.MissingByStatus = breakdown(rec.Missing, func(r model.Booking) string { return orDefault(r.Status, "unknown") })
	return rec
}

func keySet(records []model.Booking) map[string]struct{} {
	keys := make(map[string]struct{}, len(records))
	for _, r := range records {
		keys[r.ReservationID] = struct{}{}
	}
	return keys
}

func groupByCheckIn(records []model.Booking) []DateGroup {
	index := make(map[string]int)
	groups := []DateGroup{}
	for _, r := range records {
		key := r.CheckInDate
		if d, err := ParseDate(r.CheckInDate); err == nil {
			key = d.String()
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{CheckInDate: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].CheckInDate < groups[b].CheckInDate
	})
	return groups
}

func breakdown(records []model.Booking, attr func(model.Booking) string) []Breakdown {
	index := make(map[string]int)
	out := []Breakdown{}
	for _, r := range records {
		name := attr(r)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Breakdown{Name: name})
		}
		out[i].Count++
	}
	for i := range out {
		out[i].Percent = occupancyRate(out[i].Count, len(records))
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
