// Package calendarexport writes a volunteer's calendar marks as an iCalendar file
package calendarexport

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const productID = "-//volunteer-hub//calendar marks//EN"

// Write renders one all-day VEVENT per marked date, in date order.
// owner is used for the calendar name and to make UIDs unique per volunteer.
func Write(w io.Writer, owner string, marks map[string]aggregation.CalendarMark, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(fmt.Sprintf("Volunteering - %s", owner))

	dates := make([]string, 0, len(marks))
	for d := range marks {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		day, err := time.Parse(aggregation.DateKeyLayout, d)
		if err != nil {
			return fmt.Errorf("invalid calendar mark date %q: %w", d, err)
		}
		mark := marks[d]

		event := cal.AddEvent(fmt.Sprintf("%s-%s@volunteer-hub", d, strings.ToLower(owner)))
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(mark.Category.Title())
		event.SetDescription(fmt.Sprintf("Status: %s", mark.Status))
		event.SetStatus(eventStatus(mark.Status))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

func eventStatus(s model.Status) ical.ObjectStatus {
	switch s.Normalized() {
	case model.StatusAccepted:
		return ical.ObjectStatusConfirmed
	case model.StatusRejected:
		return ical.ObjectStatusCancelled
	default:
		return ical.ObjectStatusTentative
	}
}
