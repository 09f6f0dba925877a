package calendar

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Category is the backend code for an event type.
type Category string

// Category codes as stored by the backend.
const (
	CategoryMeeting        Category = "REUNION"
	CategoryPublicEvent    Category = "EVENTO"
	CategoryVolunteering   Category = "VOLUNTARIADO"
	CategoryTraining       Category = "CAPACITACION"
	CategoryFundraising    Category = "RECAUDACION"
	CategoryAdministrative Category = "ADMINISTRATIVO"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryMeeting,
	CategoryPublicEvent,
	CategoryVolunteering,
	CategoryTraining,
	CategoryFundraising,
	CategoryAdministrative,
}

var categoryLabels = map[Category]string{
	CategoryMeeting:        "Reunión",
	CategoryPublicEvent:    "Evento público",
	CategoryVolunteering:   "Voluntariado",
	CategoryTraining:       "Capacitación",
	CategoryFundraising:    "Recaudación de fondos",
	CategoryAdministrative: "Administrativo",
}

// Label returns the Spanish display name. Unknown codes are returned verbatim.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// IsKnown reports whether c is one of the fixed categories.
func (c Category) IsKnown() bool {
	_, ok := categoryLabels[c]
	return ok
}

// CategoryFromLabel is the reverse lookup of Label.
// PRE: none
// POST: returns the code and true for a known label, ("", false) otherwise
func CategoryFromLabel(label string) (Category, bool) {
	for c, l := range categoryLabels {
		if l == label {
			return c, true
		}
	}
	return "", false
}

// Defaults applied to a blank draft and to missing fields of an edited event.
const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
	DefaultCategory  = CategoryMeeting
)

// MaxTitleLength matches the backend column.
const MaxTitleLength = 200

const dateLayout = "2006-01-02"

// Validation errors. Messages are shown to the user as-is.
var (
	ErrTitleRequired = errors.New("el título es obligatorio")
	ErrTitleTooLong  = errors.New("el título no puede superar los 200 caracteres")
	ErrDateRequired  = errors.New("la fecha es obligatoria")
	ErrInvalidDate   = errors.New("la fecha no es válida")
	ErrPastDate      = errors.New("No se pueden crear o modificar eventos en fechas pasadas")
)

// Event is one calendar entry as exchanged with the backend.
// INVARIANT: Title and Date are required; everything else is optional.
type Event struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"titulo"`
	Description string   `json:"descripcion"`
	Date        string   `json:"fecha"`
	StartTime   string   `json:"hora_inicio"`
	EndTime     string   `json:"hora_fin"`
	Category    Category `json:"tipo_evento"`
}

// MarshalJSON writes empty clock times as null.
func (e Event) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID          int64    `json:"id,omitempty"`
		Title       string   `json:"titulo"`
		Description string   `json:"descripcion"`
		Date        string   `json:"fecha"`
		StartTime   *string  `json:"hora_inicio"`
		EndTime     *string  `json:"hora_fin"`
		Category    Category `json:"tipo_evento"`
	}
	return json.Marshal(wire{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		StartTime:   nullableClock(e.StartTime),
		EndTime:     nullableClock(e.EndTime),
		Category:    e.Category,
	})
}

// UnmarshalJSON accepts null text fields and trims backend seconds from clock times.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w struct {
		ID          int64    `json:"id"`
		Title       *string  `json:"titulo"`
		Description *string  `json:"descripcion"`
		Date        *string  `json:"fecha"`
		StartTime   *string  `json:"hora_inicio"`
		EndTime     *string  `json:"hora_fin"`
		Category    Category `json:"tipo_evento"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Event{
		ID:          w.ID,
		Title:       deref(w.Title),
		Description: deref(w.Description),
		Date:        deref(w.Date),
		StartTime:   ShortClock(deref(w.StartTime)),
		EndTime:     ShortClock(deref(w.EndTime)),
		Category:    w.Category,
	}
	return nil
}

// Day returns the event's calendar day.
// POST: ok is false when Date is missing or unparseable
func (e Event) Day() (time.Time, bool) {
	return ParseDate(e.Date)
}

// TimeRange formats "HH:MM - HH:MM", or whichever half is present.
func (e Event) TimeRange() string {
	switch {
	case e.StartTime != "" && e.EndTime != "":
		return e.StartTime + " - " + e.EndTime
	case e.StartTime != "":
		return e.StartTime
	default:
		return e.EndTime
	}
}

// Day builds a civil date. Civil dates are midnight UTC so day arithmetic never crosses DST.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d)
}

// ParseDate parses "YYYY-MM-DD" or the date part of an RFC 3339 timestamp.
// POST: ok is false for empty or malformed input; never panics
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a civil date as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ShortClock trims "HH:MM:SS" to "HH:MM".
func ShortClock(s string) string {
	if len(s) > 5 && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}

func nullableClock(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
