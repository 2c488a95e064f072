// Package export renders the agenda for use outside the dashboard.
package export

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/geocoder89/agenda/internal/domain/event"
)

const productID = "-//Agenda Municipal//Agenda API//ES"

// Calendar renders events as an iCalendar feed. Each event runs from its
// first day at start_time to its last included day at end_time, in loc.
func Calendar(name string, events []event.Event, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, e := range events {
		d := e.Display()

		ve := cal.AddEvent(e.ID + "@agenda")
		ve.SetDtStampTime(now)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(d.Start.In(loc, e.StartTime))
		ve.SetEndAt(d.End.In(loc, e.EndTime))
		ve.SetSummary(e.Title)

		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if desc := describe(e); desc != "" {
			ve.SetDescription(desc)
		}
		if e.Category != nil {
			ve.SetProperty(ical.ComponentPropertyCategories, *e.Category)
		}
		if e.Color != "" {
			ve.SetProperty(ical.ComponentProperty("COLOR"), e.Color)
		}
	}

	return cal.Serialize()
}

func describe(e event.Event) string {
	var lines []string

	if e.Description != nil && *e.Description != "" {
		lines = append(lines, *e.Description)
	}
	if e.UnitName != "" {
		lines = append(lines, "Unidad: "+e.UnitName)
	}
	if e.Organizer != "" {
		lines = append(lines, "Organiza: "+e.Organizer)
	}
	if e.Attendees != "" {
		lines = append(lines, "Participantes: "+e.Attendees)
	}

	return strings.Join(lines, "\n")
}
