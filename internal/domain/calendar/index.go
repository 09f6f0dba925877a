package calendar

import "time"

// EventsOn returns the events dated day, in input order.
// Events with a missing or malformed date are skipped.
// PRE: none
// POST: result preserves the relative order of events
func EventsOn(events []Event, day time.Time) []Event {
	target := DateOf(day)
	var out []Event
	for _, e := range events {
		d, ok := e.Day()
		if ok && d.Equal(target) {
			out = append(out, e)
		}
	}
	return out
}

// Index associates civil dates with their events.
// INVARIANT: each slice keeps the insertion order of the source list
type Index struct {
	byDay map[time.Time][]Event
}

// NewIndex builds an index over events, dropping undated ones.
func NewIndex(events []Event) Index {
	ix := Index{byDay: make(map[time.Time][]Event)}
	for _, e := range events {
		d, ok := e.Day()
		if !ok {
			continue
		}
		ix.byDay[d] = append(ix.byDay[d], e)
	}
	return ix
}

// On returns the events on day. Safe on a zero Index.
func (ix Index) On(day time.Time) []Event {
	if ix.byDay == nil {
		return nil
	}
	return ix.byDay[DateOf(day)]
}
