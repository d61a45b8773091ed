package services

import (
	"cmp"
	"slices"
	"time"

	"prestes/internal/core"
)

// CalendarDay is one cell of the agenda grid.
type CalendarDay struct {
	Date    string                `json:"date"` // YYYY-MM-DD
	Weekday time.Weekday          `json:"weekday"`
	Events  []core.FinancialEvent `json:"events"`
}

// MonthCalendar lays out one month of jobs. Offset is the number of blank
// cells before day 1 in a Sunday-first week.
type MonthCalendar struct {
	Month  string        `json:"month"` // MM/YYYY
	Offset int           `json:"offset"`
	Days   []CalendarDay `json:"days"`
}

// daysIn returns the number of days in month, 28 to 31.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// placement is the day an event is shown on. Dated events sit on their date;
// undated ones fall on the first day of their reference month.
func placement(e core.FinancialEvent) (time.Time, bool) {
	if e.Date != "" {
		if d, err := core.ParseDate(e.Date); err == nil {
			return d.Time, true
		}
	}
	ref, err := core.ParseMonthRef(e.MonthReference)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(ref.Year, time.Month(ref.Month), 1, 0, 0, 0, 0, time.UTC), true
}

// BuildCalendar places events on the days of ref's month. Within a day they
// are ordered by start time, then name. Events that cannot be placed are
// left out.
func BuildCalendar(events []core.FinancialEvent, ref core.MonthRef) MonthCalendar {
	month := time.Month(ref.Month)
	first := time.Date(ref.Year, month, 1, 0, 0, 0, 0, time.UTC)
	n := daysIn(ref.Year, month)

	cal := MonthCalendar{
		Month:  ref.String(),
		Offset: int(first.Weekday()),
		Days:   make([]CalendarDay, n),
	}
	for i := range cal.Days {
		day := first.AddDate(0, 0, i)
		cal.Days[i] = CalendarDay{
			Date:    day.Format("2006-01-02"),
			Weekday: day.Weekday(),
			Events:  []core.FinancialEvent{},
		}
	}

	for _, e := range events {
		at, ok := placement(e)
		if !ok || at.Year() != ref.Year || at.Month() != month {
			continue
		}
		d := &cal.Days[at.Day()-1]
		d.Events = append(d.Events, e)
	}
	for i := range cal.Days {
		slices.SortStableFunc(cal.Days[i].Events, func(a, b core.FinancialEvent) int {
			return cmp.Or(cmp.Compare(a.Time, b.Time), cmp.Compare(a.Name, b.Name))
		})
	}
	return cal
}

// Calendar lays out the current snapshot's events for ref.
func (b *Binder) Calendar(ref core.MonthRef) MonthCalendar {
	return BuildCalendar(b.Snapshot().Events, ref)
}
