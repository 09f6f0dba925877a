package orchestrators

import (
	"context"
	"errors"
	"testing"

	"llavedesol/internal/domain/calendar"
)

type mockCalendarBackend struct {
	events  []calendar.Event
	saved   []calendar.Event
	deleted []int64
	listErr error
	saveErr error
}

func (m *mockCalendarBackend) ListEvents(_ context.Context) ([]calendar.Event, error) {
	return m.events, m.listErr
}

func (m *mockCalendarBackend) SaveEvent(_ context.Context, e calendar.Event) error {
	m.saved = append(m.saved, e)
	return m.saveErr
}

func (m *mockCalendarBackend) DeleteEvent(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func sampleCalendar() []calendar.Event {
	return []calendar.Event{
		{ID: 1, Title: "Asamblea", Date: "2026-10-20", StartTime: "18:00", EndTime: "20:00", Category: calendar.CategoryMeeting},
		{ID: 2, Title: "Colecta", Date: "2026-10-05", Category: calendar.CategoryFundraising},
	}
}

func validDraft() calendar.Draft {
	return calendar.Draft{Title: "Taller", Date: "2026-10-25", StartTime: "10:00", EndTime: "12:00", Category: calendar.CategoryTraining}
}

func TestExecuteLoadCalendar_ReplaysClicks(t *testing.T) {
	tests := []struct {
		name       string
		input      CalendarInput
		wantState  calendar.State
		wantNotice bool
	}{
		{"nothing", CalendarInput{Mode: calendar.ModeAdmin}, calendar.StateClosed, false},
		{"future day", CalendarInput{Mode: calendar.ModeAdmin, Day: "2026-10-30"}, calendar.StateCreating, false},
		{"today", CalendarInput{Mode: calendar.ModeAdmin, Day: "2026-10-17"}, calendar.StateCreating, false},
		{"past day", CalendarInput{Mode: calendar.ModeAdmin, Day: "2026-10-16"}, calendar.StateClosed, true},
		{"bad day", CalendarInput{Mode: calendar.ModeAdmin, Day: "mañana"}, calendar.StateClosed, true},
		{"edit", CalendarInput{Mode: calendar.ModeAdmin, EventID: 1}, calendar.StateEditing, false},
		{"unknown event", CalendarInput{Mode: calendar.ModeAdmin, EventID: 99}, calendar.StateClosed, true},
		{"new", CalendarInput{Mode: calendar.ModeAdmin, New: true}, calendar.StateCreating, false},
		{"member event", CalendarInput{Mode: calendar.ModeMember, EventID: 1}, calendar.StateViewing, false},
		{"member day", CalendarInput{Mode: calendar.ModeMember, Day: "2026-10-30"}, calendar.StateClosed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := CalendarDeps{Backend: &mockCalendarBackend{events: sampleCalendar()}, Now: fixedNow}
			res, err := ExecuteLoadCalendar(context.Background(), tt.input, deps)
			if err != nil {
				t.Fatal(err)
			}
			if got := res.View.Form().State(); got != tt.wantState {
				t.Errorf("state = %v, want %v", got, tt.wantState)
			}
			if (res.Notice != "") != tt.wantNotice {
				t.Errorf("notice = %q", res.Notice)
			}
		})
	}
}

func TestExecuteLoadCalendar_MonthAndListError(t *testing.T) {
	deps := CalendarDeps{Backend: &mockCalendarBackend{}, Now: fixedNow}
	res, err := ExecuteLoadCalendar(context.Background(), CalendarInput{Month: calendar.Day(2027, 2, 14)}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if got := calendar.FormatDate(res.View.Month()); got != "2027-02-01" {
		t.Errorf("month = %s", got)
	}

	failing := CalendarDeps{Backend: &mockCalendarBackend{listErr: errors.New("down")}, Now: fixedNow}
	if _, err := ExecuteLoadCalendar(context.Background(), CalendarInput{}, failing); err == nil {
		t.Error("expected list error")
	}
	if _, err := ExecuteLoadCalendar(context.Background(), CalendarInput{}, CalendarDeps{Now: fixedNow}); err == nil {
		t.Error("expected error without an event source")
	}
}

func TestExecuteSaveEvent_Create(t *testing.T) {
	be := &mockCalendarBackend{events: sampleCalendar()}
	res, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, Day: "2026-10-25"},
		Draft:         validDraft(),
	}, CalendarDeps{Backend: be, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if len(be.saved) != 1 || be.saved[0].ID != 0 || be.saved[0].Title != "Taller" {
		t.Errorf("saved = %+v", be.saved)
	}
	if res.View.Form().State() != calendar.StateClosed {
		t.Error("form left open")
	}
}

func TestExecuteSaveEvent_EditKeepsID(t *testing.T) {
	be := &mockCalendarBackend{events: sampleCalendar()}
	d := validDraft()
	d.Title = "Asamblea general"
	_, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, EventID: 1},
		Draft:         d,
	}, CalendarDeps{Backend: be, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if len(be.saved) != 1 || be.saved[0].ID != 1 {
		t.Errorf("saved = %+v", be.saved)
	}
}

func TestExecuteSaveEvent_Rejections(t *testing.T) {
	past := validDraft()
	past.Date = "2026-10-01"
	untitled := validDraft()
	untitled.Title = " "

	tests := []struct {
		name  string
		input SaveEventInput
		open  bool
	}{
		{"past draft", SaveEventInput{CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true}, Draft: past}, true},
		{"missing title", SaveEventInput{CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true}, Draft: untitled}, true},
		{"past click", SaveEventInput{CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, Day: "2026-10-01"}, Draft: validDraft()}, false},
		{"member", SaveEventInput{CalendarInput: CalendarInput{Mode: calendar.ModeMember, New: true}, Draft: validDraft()}, false},
		{"delete without edit", SaveEventInput{CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true}, Delete: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := &mockCalendarBackend{events: sampleCalendar()}
			res, err := ExecuteSaveEvent(context.Background(), tt.input, CalendarDeps{Backend: be, Now: fixedNow})
			if !errors.Is(err, ErrEventRejected) {
				t.Fatalf("err = %v, want ErrEventRejected", err)
			}
			if len(be.saved) != 0 || len(be.deleted) != 0 {
				t.Error("backend reached")
			}
			if open := res.View.Form().State() != calendar.StateClosed; open != tt.open {
				t.Errorf("open = %v, want %v", open, tt.open)
			}
		})
	}
}

func TestExecuteSaveEvent_BackendErrorClosesForm(t *testing.T) {
	be := &mockCalendarBackend{events: sampleCalendar(), saveErr: errors.New("500")}
	res, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true},
		Draft:         validDraft(),
	}, CalendarDeps{Backend: be, Now: fixedNow})
	if err == nil || errors.Is(err, ErrEventRejected) {
		t.Fatalf("err = %v", err)
	}
	if len(be.saved) != 1 {
		t.Errorf("saver calls = %d, want 1", len(be.saved))
	}
	if res.View.Form().State() != calendar.StateClosed {
		t.Error("form left open after backend error")
	}
}

func TestExecuteSaveEvent_Delete(t *testing.T) {
	be := &mockCalendarBackend{events: sampleCalendar()}
	_, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, EventID: 2},
		Delete:        true,
	}, CalendarDeps{Backend: be, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if len(be.deleted) != 1 || be.deleted[0] != 2 {
		t.Errorf("deleted = %v", be.deleted)
	}
}

func TestExecuteSaveEvent_DemoWritesBack(t *testing.T) {
	demo := calendar.NewDemoStore(sampleCalendar())
	deps := CalendarDeps{Demo: demo, Now: fixedNow}

	if _, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true},
		Draft:         validDraft(),
	}, deps); err != nil {
		t.Fatal(err)
	}
	events := demo.Events()
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	created := events[2]
	if created.ID != fixedTime.UnixMilli() || created.Title != "Taller" {
		t.Errorf("created = %+v", created)
	}

	if _, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, EventID: 1},
		Delete:        true,
	}, deps); err != nil {
		t.Fatal(err)
	}
	if got := demo.Events(); len(got) != 2 || got[0].ID != 2 {
		t.Errorf("after delete = %+v", got)
	}

	bad := validDraft()
	bad.Title = ""
	if _, err := ExecuteSaveEvent(context.Background(), SaveEventInput{
		CalendarInput: CalendarInput{Mode: calendar.ModeAdmin, New: true},
		Draft:         bad,
	}, deps); !errors.Is(err, ErrEventRejected) {
		t.Fatalf("err = %v", err)
	}
	if len(demo.Events()) != 2 {
		t.Error("rejected edit changed the demo store")
	}
}
