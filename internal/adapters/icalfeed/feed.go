// Package icalfeed renders the organisation calendar as an iCalendar feed
// members can subscribe to from their own calendar apps.
package icalfeed

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"llavedesol/internal/domain/calendar"
)

// ProductID identifies the generator in PRODID.
const ProductID = "-//Llave de Sol//Portal//ES"

// CalendarName is shown by subscribing clients.
const CalendarName = "Llave de Sol"

// Build converts events to a calendar.
// Events without a parseable date are skipped. Events without both clock times
// become all-day entries.
// PRE: host is the portal's host name, used to make UIDs globally unique
func Build(events []calendar.Event, stamp time.Time, host string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(CalendarName)

	for _, e := range events {
		day, ok := e.Day()
		if !ok {
			continue
		}
		ve := cal.AddEvent(fmt.Sprintf("evento-%d@%s", e.ID, host))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetProperty(ics.ComponentPropertyCategories, e.Category.Label())

		start, end, timed := span(day, e.StartTime, e.EndTime)
		if timed {
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		} else {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}
	return cal
}

// Write serializes the feed for events to w.
func Write(w io.Writer, events []calendar.Event, stamp time.Time, host string) error {
	return Build(events, stamp, host).SerializeTo(w)
}

// span resolves clock times on day in local time.
// POST: timed is false unless both times parse and end is after start
func span(day time.Time, from, to string) (start, end time.Time, timed bool) {
	s, err1 := time.Parse("15:04", from)
	e, err2 := time.Parse("15:04", to)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := day.Date()
	start = time.Date(y, m, d, s.Hour(), s.Minute(), 0, 0, time.Local)
	end = time.Date(y, m, d, e.Hour(), e.Minute(), 0, 0, time.Local)
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
