package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"booking-dashboard-backend/internal/booking"
)

// ProductID identifies this exporter in generated calendars.
const ProductID = "-//booking-dashboard//calendar export//PT"

// ExportUnit renders one unit's calendar row as an iCalendar document. Each
// reservation becomes an all-day VEVENT whose DTEND is the checkout date, so
// calendar clients show the checkout day as free.
func ExportUnit(unit booking.CalendarUnit, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(calendarName(unit))

	for _, r := range unit.Reservations {
		event := cal.AddEvent(fmt.Sprintf("%s@%s", r.ID, unit.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(r.StartDate.Time())
		event.SetAllDayEndAt(r.EndDate.Time())
		event.SetSummary(summary(r))
		event.SetDescription(description(r))
		event.SetLocation(unit.Code)
		if r.Type == booking.TypeProvisional {
			event.SetStatus(ical.ObjectStatusTentative)
		} else {
			event.SetStatus(ical.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize()
}

func calendarName(unit booking.CalendarUnit) string {
	if unit.Name != nil && *unit.Name != "" {
		return unit.Code + " | " + *unit.Name
	}
	return unit.Code
}

func summary(r booking.CalendarReservation) string {
	switch r.Type {
	case booking.TypeBlocked:
		return "Bloqueado"
	case booking.TypeProvisional:
		return "Provisório: " + guestLabel(r)
	default:
		return guestLabel(r)
	}
}

func guestLabel(r booking.CalendarReservation) string {
	name := strings.TrimSpace(r.GuestName)
	if name == "" {
		name = "Hóspede"
	}
	if r.Platform != "" && r.Platform != booking.OtherPlatform {
		return fmt.Sprintf("%s (%s)", name, r.Platform)
	}
	return name
}

func description(r booking.CalendarReservation) string {
	lines := []string{
		"Reserva: " + r.BookingID,
		fmt.Sprintf("Noites: %d", r.Nights),
		fmt.Sprintf("Hóspedes: %d", r.GuestCount),
	}
	if r.CheckInTime != nil {
		lines = append(lines, "Check-in: "+*r.CheckInTime)
	}
	if r.CheckOutTime != nil {
		lines = append(lines, "Check-out: "+*r.CheckOutTime)
	}
	return strings.Join(lines, "\n")
}
