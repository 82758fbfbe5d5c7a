package booking

import "sort"

// ConflictPair is two intervals of the same unit that share at least one night.
type ConflictPair struct {
	ListingID string   `json:"listingId"`
	UnitCode  string   `json:"unitCode"`
	First     Conflict `json:"first"`
	Second    Conflict `json:"second"`
}

// Conflict is the part of an interval a reviewer needs to resolve an overlap.
type Conflict struct {
	ReservationID string `json:"reservationId"`
	BookingCode   string `json:"bookingCode"`
	GuestName     string `json:"guestName"`
	CheckInDate   Date   `json:"checkInDate"`
	CheckOutDate  Date   `json:"checkOutDate"`
	Type          Type   `json:"type"`
	Status        string `json:"status"`
	Platform      string `json:"platform"`
}

// DetectConflicts reports overlapping intervals per unit. Each unit's
// intervals are sorted by check-in and only neighbours are compared: a pair
// conflicts when the earlier one checks out after the later one checks in.
// Checking out on the next guest's check-in day is a valid changeover.
// Units are reported in first-seen order.
func DetectConflicts(intervals []Interval) []ConflictPair {
	index := make(map[string]int)
	var groups [][]Interval
	for _, iv := range intervals {
		i, ok := index[iv.ListingID]
		if !ok {
			i = len(groups)
			index[iv.ListingID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], iv)
	}

	pairs := []ConflictPair{}
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].CheckIn.Before(group[b].CheckIn)
		})
		for i := 0; i+1 < len(group); i++ {
			a, b := group[i], group[i+1]
			if a.CheckOut.After(b.CheckIn) {
				pairs = append(pairs, ConflictPair{
					ListingID: a.ListingID,
					UnitCode:  a.UnitCode,
					First:     conflictOf(a),
					Second:    conflictOf(b),
				})
			}
		}
	}
	return pairs
}

// ConflictingListings returns the distinct listing ids involved in pairs.
func ConflictingListings(pairs []ConflictPair) []string {
	seen := make(map[string]struct{}, len(pairs))
	var ids []string
	for _, p := range pairs {
		if _, ok := seen[p.ListingID]; ok {
			continue
		}
		seen[p.ListingID] = struct{}{}
		ids = append(ids, p.ListingID)
	}
	return ids
}

func conflictOf(iv Interval) Conflict {
	return Conflict{
		ReservationID: iv.ReservationID,
		BookingCode:   iv.BookingCode,
		GuestName:     iv.GuestName,
		CheckInDate:   iv.CheckIn,
		CheckOutDate:  iv.CheckOut,
		Type:          iv.Type,
		Status:        iv.Status,
		Platform:      iv.Platform,
	}
}
