package calendar

import (
	"errors"
	"strings"
	"time"
)

// State is the modal state of the event form.
type State int

const (
	StateClosed State = iota
	StateCreating
	StateEditing
	StateViewing
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	case StateViewing:
		return "viewing"
	default:
		return "closed"
	}
}

// Mode decides which affordances the calendar exposes.
type Mode int

const (
	// ModeMember is read-only: every click collapses to viewing.
	ModeMember Mode = iota
	// ModeAdmin exposes create, edit and delete.
	ModeAdmin
)

// ErrNotEditing is returned when delete is attempted outside the edit form.
var ErrNotEditing = errors.New("solo se puede eliminar un evento en edición")

// ErrFormClosed is returned when submitting with no create or edit form open.
var ErrFormClosed = errors.New("no hay un formulario abierto")

// Draft is the editable copy of an event while the modal is open.
type Draft struct {
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Category    Category
}

// NewDraft returns a blank draft dated day.
func NewDraft(day time.Time) Draft {
	return Draft{
		Date:      FormatDate(day),
		StartTime: DefaultStartTime,
		EndTime:   DefaultEndTime,
		Category:  DefaultCategory,
	}
}

// DraftFrom seeds a draft from e, substituting defaults for missing optional fields.
// PRE: today is a civil date, used when e has no date
func DraftFrom(e Event, today time.Time) Draft {
	d := Draft{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Category:    e.Category,
	}
	if d.Date == "" {
		d.Date = FormatDate(today)
	}
	if d.StartTime == "" {
		d.StartTime = DefaultStartTime
	}
	if d.EndTime == "" {
		d.EndTime = DefaultEndTime
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	return d
}

// Validate checks required fields and the not-in-the-past rule.
// Only calendar days are compared; an event earlier today is still accepted.
// PRE: today is a civil date
// POST: returns nil if the draft may be saved
func (d Draft) Validate(today time.Time) error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if len([]rune(d.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrDateRequired
	}
	day, ok := ParseDate(d.Date)
	if !ok {
		return ErrInvalidDate
	}
	if day.Before(today) {
		return ErrPastDate
	}
	return nil
}

// Event converts the draft into a payload carrying id (0 for a new event).
func (d Draft) Event(id int64) Event {
	category := d.Category
	if category == "" {
		category = DefaultCategory
	}
	return Event{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Date:        d.Date,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Category:    category,
	}
}

// Form is the event modal state machine.
// INVARIANT: draft is meaningful only in StateCreating and StateEditing;
// selected is set only in StateEditing and StateViewing
type Form struct {
	mode     Mode
	state    State
	draft    Draft
	selected *Event
	now      func() time.Time
}

// NewForm returns a closed form. now supplies the local clock.
func NewForm(mode Mode, now func() time.Time) *Form {
	if now == nil {
		now = time.Now
	}
	return &Form{mode: mode, now: now}
}

// State returns the current modal state.
func (f *Form) State() State { return f.state }

// Mode returns the operating mode.
func (f *Form) Mode() Mode { return f.mode }

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft { return f.draft }

// Selected returns the event being edited or viewed.
func (f *Form) Selected() (Event, bool) {
	if f.selected == nil {
		return Event{}, false
	}
	return *f.selected, true
}

// Today returns the current civil date.
func (f *Form) Today() time.Time {
	return DateOf(f.now())
}

// ClickDay opens the create form for day.
// PRE: none
// POST: admin mode and day >= today -> StateCreating with a blank draft dated day;
// day < today -> ErrPastDate, state unchanged; member mode -> no-op
func (f *Form) ClickDay(day time.Time) error {
	if f.mode != ModeAdmin {
		return nil
	}
	day = DateOf(day)
	if day.Before(f.Today()) {
		return ErrPastDate
	}
	f.state = StateCreating
	f.selected = nil
	f.draft = NewDraft(day)
	return nil
}

// OpenNew opens the create form dated today. Member mode is a no-op.
func (f *Form) OpenNew() {
	if f.mode != ModeAdmin {
		return
	}
	f.state = StateCreating
	f.selected = nil
	f.draft = NewDraft(f.Today())
}

// ClickEvent opens e for editing (admin) or read-only viewing (member).
// POST: admin -> StateEditing with a seeded draft; member -> StateViewing, no draft
func (f *Form) ClickEvent(e Event) {
	ev := e
	f.selected = &ev
	if f.mode == ModeAdmin {
		f.state = StateEditing
		f.draft = DraftFrom(e, f.Today())
		return
	}
	f.state = StateViewing
	f.draft = Draft{}
}

// Update replaces the draft while a create or edit form is open.
// POST: returns ErrFormClosed in any other state
func (f *Form) Update(d Draft) error {
	if f.state != StateCreating && f.state != StateEditing {
		return ErrFormClosed
	}
	f.draft = d
	return nil
}

// Submit validates the draft and closes the form.
// PRE: state is StateCreating or StateEditing
// POST: on success returns the payload (ID set only when editing) and the form is closed;
// on validation failure the state and draft are unchanged
func (f *Form) Submit() (Event, error) {
	if f.state != StateCreating && f.state != StateEditing {
		return Event{}, ErrFormClosed
	}
	if err := f.draft.Validate(f.Today()); err != nil {
		return Event{}, err
	}
	var id int64
	if f.state == StateEditing && f.selected != nil {
		id = f.selected.ID
	}
	payload := f.draft.Event(id)
	f.Close()
	return payload, nil
}

// Delete closes the edit form and returns the id to delete.
// POST: ErrNotEditing unless state is StateEditing
func (f *Form) Delete() (int64, error) {
	if f.state != StateEditing || f.selected == nil {
		return 0, ErrNotEditing
	}
	id := f.selected.ID
	f.Close()
	return id, nil
}

// Close discards the draft from any state.
func (f *Form) Close() {
	f.state = StateClosed
	f.selected = nil
	f.draft = Draft{}
}
