// Package aggregation turns one volunteer's JoinEvent records into the derived views shown on
// the dashboard: calendar marks, category summary, skill profile, badges and goal progress.
//
// Every function here is pure. Malformed records never abort a computation; they are reported
// as model.DataQualityWarning values and contribute nothing.
package aggregation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// DateKeyLayout is the layout of calendar mark keys and of canonical JoinEvent dates
const DateKeyLayout = "2006-01-02"

// Layouts seen on stored JoinEvent dates, tried in order. Slashed dates are left out: both
// day-first and month-first orders turn up and a wrong guess moves hours to another day.
var dateLayouts = []string{
	DateKeyLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Mon Jan 02 2006",
	"January 2, 2006",
}

// ParseDate parses a stored date string and returns it as UTC midnight
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// entry is a JoinEvent after field-level checks
type entry struct {
	rec      *model.JoinEvent
	date     time.Time
	dateOK   bool
	hours    float64
	category model.Category
	status   model.Status
}

func (e entry) accepted() bool { return e.status == model.StatusAccepted }

// prepare checks every record once. Records keep their input order.
func prepare(records []model.JoinEvent) ([]entry, []model.DataQualityWarning) {
	entries := make([]entry, 0, len(records))
	var warnings []model.DataQualityWarning

	for i := range records {
		r := &records[i]
		e := entry{rec: r, category: model.NormalizeCategory(r.Category), status: r.Status.Normalized()}

		if d, err := ParseDate(r.Date); err != nil {
			warnings = append(warnings, model.DataQualityWarning{
				JoinEventID: r.ID, Field: "date", Value: r.Date, Reason: "could not be parsed",
			})
		} else {
			e.date, e.dateOK = d, true
		}

		switch {
		case math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0):
			warnings = append(warnings, model.DataQualityWarning{
				JoinEventID: r.ID, Field: "hours", Value: fmt.Sprint(r.Hours), Reason: "is not a finite number, counted as 0",
			})
		case r.Hours < 0:
			warnings = append(warnings, model.DataQualityWarning{
				JoinEventID: r.ID, Field: "hours", Value: fmt.Sprint(r.Hours), Reason: "is negative, counted as 0",
			})
		default:
			e.hours = r.Hours
		}

		if e.category == "" {
			warnings = append(warnings, model.DataQualityWarning{
				JoinEventID: r.ID, Field: "category", Value: r.Category, Reason: "is missing",
			})
		}
		if _, ok := model.ParseStatus(string(r.Status)); !ok {
			warnings = append(warnings, model.DataQualityWarning{
				JoinEventID: r.ID, Field: "status", Value: string(r.Status), Reason: "is not a known status",
			})
		}

		entries = append(entries, e)
	}
	return entries, warnings
}

// Window restricts a view to one calendar month. The zero Window means all time.
type Window struct {
	Year  int
	Month time.Month
}

// AllTime returns the unrestricted window
func AllTime() Window { return Window{} }

// MonthOf returns the window covering one calendar month
func MonthOf(year int, month time.Month) Window { return Window{Year: year, Month: month} }

// ParseWindow parses "all" (or "") and "YYYY-MM"
func ParseWindow(raw string) (Window, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" || s == "all" {
		return AllTime(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window %q, expected YYYY-MM or all: %w", raw, err)
	}
	return MonthOf(t.Year(), t.Month()), nil
}

func (w Window) IsAllTime() bool { return w.Year == 0 }

// Contains reports whether d falls inside the window
func (w Window) Contains(d time.Time) bool {
	if w.IsAllTime() {
		return true
	}
	return d.Year() == w.Year && d.Month() == w.Month
}

func (w Window) String() string {
	if w.IsAllTime() {
		return "all time"
	}
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}

// includes decides window membership for an entry.
// An all-time window does not need a date, so undated accepted hours still count there.
func (w Window) includes(e entry) bool {
	if w.IsAllTime() {
		return true
	}
	return e.dateOK && w.Contains(e.date)
}
