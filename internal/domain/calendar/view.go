package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EventSaver persists an event. A payload without ID is an insert.
type EventSaver interface {
	SaveEvent(ctx context.Context, e Event) error
}

// EventDeleter removes an event by id.
type EventDeleter interface {
	DeleteEvent(ctx context.Context, id int64) error
}

// ErrEventNotFound is returned when a clicked id is not in the event list.
var ErrEventNotFound = errors.New("evento no encontrado")

// View composes the month grid, the event index and the form state machine.
// A backend implementing neither EventSaver nor EventDeleter puts the view in demo
// mode, where saves and deletes mutate the local event list.
type View struct {
	events  []Event
	cursor  time.Time
	form    *Form
	saver   EventSaver
	deleter EventDeleter
	now     func() time.Time
	newID   func() int64
}

// Option configures a View.
type Option func(*View)

// WithClock overrides the local clock.
func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

// WithIDGenerator overrides the demo-mode id generator.
func WithIDGenerator(gen func() int64) Option {
	return func(v *View) { v.newID = gen }
}

// WithMonth positions the cursor on month instead of the current month.
func WithMonth(month time.Time) Option {
	return func(v *View) { v.cursor = FirstOfMonth(month) }
}

// NewView builds a view over a copy of events.
// PRE: backend may be nil or implement EventSaver and/or EventDeleter
// POST: form is closed; cursor is the current month unless WithMonth is given
func NewView(events []Event, mode Mode, backend any, opts ...Option) *View {
	v := &View{
		events: append([]Event(nil), events...),
		now:    time.Now,
	}
	if s, ok := backend.(EventSaver); ok {
		v.saver = s
	}
	if d, ok := backend.(EventDeleter); ok {
		v.deleter = d
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.newID == nil {
		v.newID = v.clockID
	}
	if v.cursor.IsZero() {
		v.cursor = FirstOfMonth(v.now())
	}
	v.form = NewForm(mode, v.now)
	return v
}

// Events returns a copy of the local event list.
func (v *View) Events() []Event {
	return append([]Event(nil), v.events...)
}

// IsDemo reports whether no backend capability is wired.
func (v *View) IsDemo() bool {
	return v.saver == nil && v.deleter == nil
}

// Mode returns the operating mode.
func (v *View) Mode() Mode { return v.form.Mode() }

// Form exposes the state machine for rendering.
func (v *View) Form() *Form { return v.form }

// Month returns the first day of the visible month.
func (v *View) Month() time.Time { return v.cursor }

// NextMonth advances the cursor. It never touches the backend.
func (v *View) NextMonth() { v.cursor = v.cursor.AddDate(0, 1, 0) }

// PrevMonth moves the cursor back one month.
func (v *View) PrevMonth() { v.cursor = v.cursor.AddDate(0, -1, 0) }

// GoTo moves the cursor to month.
func (v *View) GoTo(month time.Time) { v.cursor = FirstOfMonth(month) }

// Today returns the current civil date.
func (v *View) Today() time.Time { return DateOf(v.now()) }

// Grid returns the 42 cells of the visible month.
func (v *View) Grid() []Cell {
	return BuildGrid(v.cursor, v.Today(), NewIndex(v.events))
}

// ClickDay forwards a day click to the form.
func (v *View) ClickDay(day time.Time) error {
	return v.form.ClickDay(day)
}

// OpenNew opens a blank create form dated today.
func (v *View) OpenNew() {
	v.form.OpenNew()
}

// ClickEvent opens the event with the given id.
// POST: ErrEventNotFound when id is not in the local list
func (v *View) ClickEvent(id int64) error {
	for _, e := range v.events {
		if e.ID == id {
			v.form.ClickEvent(e)
			return nil
		}
	}
	return ErrEventNotFound
}

// Update replaces the open draft.
func (v *View) Update(d Draft) error {
	return v.form.Update(d)
}

// Close discards the open form.
func (v *View) Close() {
	v.form.Close()
}

// Submit validates the draft, hands it to the saver (or the local list) and closes the form.
// PRE: form is creating or editing
// POST: validation errors leave the form open and nothing is saved;
// otherwise the saver is invoked exactly once and the form is closed even if it fails
func (v *View) Submit(ctx context.Context) (Event, error) {
	payload, err := v.form.Submit()
	if err != nil {
		return Event{}, err
	}
	if v.saver != nil {
		if err := v.saver.SaveEvent(ctx, payload); err != nil {
			return payload, fmt.Errorf("guardar evento: %w", err)
		}
		return payload, nil
	}

	if payload.ID != 0 {
		for i := range v.events {
			if v.events[i].ID == payload.ID {
				v.events[i] = payload
				return payload, nil
			}
		}
	}
	payload.ID = v.uniqueID()
	v.events = append(v.events, payload)
	return payload, nil
}

// Delete removes the edited event through the deleter (or the local list).
// PRE: form is editing
// POST: the deleter is invoked exactly once with the event id; the form is closed
func (v *View) Delete(ctx context.Context) (int64, error) {
	id, err := v.form.Delete()
	if err != nil {
		return 0, err
	}
	if v.deleter != nil {
		if err := v.deleter.DeleteEvent(ctx, id); err != nil {
			return id, fmt.Errorf("eliminar evento: %w", err)
		}
		return id, nil
	}

	kept := v.events[:0]
	for _, e := range v.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	v.events = kept
	return id, nil
}

func (v *View) clockID() int64 {
	return v.now().UnixMilli()
}

// uniqueID draws from the generator and bumps past ids already in use.
func (v *View) uniqueID() int64 {
	id := v.newID()
	for v.hasID(id) {
		id++
	}
	return id
}

func (v *View) hasID(id int64) bool {
	for _, e := range v.events {
		if e.ID == id {
			return true
		}
	}
	return false
}
