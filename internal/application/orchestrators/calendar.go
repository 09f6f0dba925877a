package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"llavedesol/internal/domain/calendar"
)

// EventLister defines the backend interface used to load the calendar.
type EventLister interface {
	ListEvents(ctx context.Context) ([]calendar.Event, error)
}

// CalendarDeps holds dependencies for the calendar orchestrators.
// Exactly one of Backend and Demo is set.
type CalendarDeps struct {
	Backend EventLister
	Demo    *calendar.DemoStore
	Now     func() time.Time
}

// CalendarInput carries the request state that reopens the modal.
type CalendarInput struct {
	Mode    calendar.Mode
	Month   time.Time // zero means the current month
	Day     string    // YYYY-MM-DD, opens the create form
	EventID int64     // opens the edit or view form
	New     bool      // opens a blank create form dated today
}

// ExecuteLoadCalendar builds a view and replays the click described by input.
// PRE: deps.Backend or deps.Demo is set
// POST: the returned view is never nil when err is nil; a click that cannot be
// replayed (past day, unknown event) leaves the form closed and is reported in Notice
func ExecuteLoadCalendar(ctx context.Context, input CalendarInput, deps CalendarDeps) (CalendarResult, error) {
	events, err := loadEvents(ctx, deps)
	if err != nil {
		return CalendarResult{}, err
	}
	return buildView(events, input, deps), nil
}

func buildView(events []calendar.Event, input CalendarInput, deps CalendarDeps) CalendarResult {
	var opts []calendar.Option
	if deps.Now != nil {
		opts = append(opts, calendar.WithClock(deps.Now))
	}
	if !input.Month.IsZero() {
		opts = append(opts, calendar.WithMonth(input.Month))
	}
	var caps any
	if deps.Demo == nil {
		caps = deps.Backend
	}
	v := calendar.NewView(events, input.Mode, caps, opts...)

	res := CalendarResult{View: v}
	switch {
	case input.EventID != 0:
		if err := v.ClickEvent(input.EventID); err != nil {
			res.Notice = err.Error()
		}
	case input.Day != "":
		day, ok := calendar.ParseDate(input.Day)
		if !ok {
			res.Notice = calendar.ErrInvalidDate.Error()
			break
		}
		if err := v.ClickDay(day); err != nil {
			res.Notice = err.Error()
		}
	case input.New:
		v.OpenNew()
	}
	return res
}

// CalendarResult is a view ready for rendering plus an optional flash.
type CalendarResult struct {
	View   *calendar.View
	Notice string
}

// SaveEventInput is a submitted event form.
type SaveEventInput struct {
	CalendarInput
	Draft  calendar.Draft
	Delete bool
}

// ErrEventRejected wraps a validation failure; the view is left open for correction.
var ErrEventRejected = errors.New("evento rechazado")

// ExecuteSaveEvent replays the click, applies the draft and submits (or deletes).
// PRE: input.Mode is calendar.ModeAdmin
// POST: a validation error returns the view with the modal still open, wrapped in ErrEventRejected;
// a backend error returns the view closed; in demo mode the whole edit runs under the store lock
func ExecuteSaveEvent(ctx context.Context, input SaveEventInput, deps CalendarDeps) (CalendarResult, error) {
	if deps.Demo != nil {
		var (
			res CalendarResult
			err error
		)
		deps.Demo.Apply(func(events []calendar.Event) []calendar.Event {
			res, err = submitEvent(ctx, events, input, deps)
			if err != nil {
				return events
			}
			return res.View.Events()
		})
		return res, err
	}

	events, err := loadEvents(ctx, deps)
	if err != nil {
		return CalendarResult{}, err
	}
	return submitEvent(ctx, events, input, deps)
}

func submitEvent(ctx context.Context, events []calendar.Event, input SaveEventInput, deps CalendarDeps) (CalendarResult, error) {
	res := buildView(events, input.CalendarInput, deps)
	if res.Notice != "" {
		return res, fmt.Errorf("%w: %s", ErrEventRejected, res.Notice)
	}
	v := res.View

	if input.Delete {
		id, err := v.Delete(ctx)
		if errors.Is(err, calendar.ErrNotEditing) {
			return res, fmt.Errorf("%w: %v", ErrEventRejected, err)
		}
		if err != nil {
			return res, err
		}
		slog.Info("calendar_event", "event", "event_deleted", "event_id", id, "demo", v.IsDemo())
		return res, nil
	}

	if err := v.Update(input.Draft); err != nil {
		return res, fmt.Errorf("%w: %v", ErrEventRejected, err)
	}
	state := v.Form().State()
	saved, err := v.Submit(ctx)
	if err != nil {
		if v.Form().State() != calendar.StateClosed {
			return res, fmt.Errorf("%w: %v", ErrEventRejected, err)
		}
		return res, err
	}
	slog.Info("calendar_event", "event", "event_saved", "event_id", saved.ID, "state", state.String(), "demo", v.IsDemo())
	return res, nil
}

func loadEvents(ctx context.Context, deps CalendarDeps) ([]calendar.Event, error) {
	if deps.Demo != nil {
		return deps.Demo.Events(), nil
	}
	if deps.Backend == nil {
		return nil, errors.New("calendar has no event source")
	}
	events, err := deps.Backend.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
