package calendar

import "time"

// GridCells is the number of days in a month grid (six weeks).
const GridCells = 42

// WeekdayLabels are the grid column headers, Sunday first.
var WeekdayLabels = []string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Cell is one day slot in the month grid.
type Cell struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	IsPast  bool
	Events  []Event
}

// DayOfMonth returns the day number shown in the cell.
func (c Cell) DayOfMonth() int {
	return c.Date.Day()
}

// ISODate returns the cell date as "YYYY-MM-DD".
func (c Cell) ISODate() string {
	return FormatDate(c.Date)
}

// FirstOfMonth returns the civil date of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), 1)
}

// MonthGrid returns the 42 consecutive dates covering month.
// PRE: none
// POST: len == GridCells; starts on the Sunday on or before the 1st;
// strictly increasing by one day; contains the first and last day of the month
func MonthGrid(month time.Time) []time.Time {
	first := FirstOfMonth(month)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]time.Time, GridCells)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// BuildGrid decorates the month grid with flags and the events of each day.
// PRE: today is a civil date (see DateOf)
// POST: len == GridCells; IsPast is strictly before today
func BuildGrid(month, today time.Time, ix Index) []Cell {
	first := FirstOfMonth(month)
	days := MonthGrid(first)

	cells := make([]Cell, len(days))
	for i, d := range days {
		cells[i] = Cell{
			Date:    d,
			InMonth: d.Month() == first.Month() && d.Year() == first.Year(),
			IsToday: d.Equal(today),
			IsPast:  d.Before(today),
			Events:  ix.On(d),
		}
	}
	return cells
}
