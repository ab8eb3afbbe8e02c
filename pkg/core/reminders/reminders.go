// Package reminders schedules goal reminders from an RRULE applied within the goal's month
package reminders

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Schedule holds a validated recurrence rule
type Schedule struct {
	rule string
}

func NewSchedule(rule string) (*Schedule, error) {
	if _, err := rrule.StrToRRule(rule); err != nil {
		return nil, fmt.Errorf("invalid reminder rrule: %w", err)
	}
	return &Schedule{rule: rule}, nil
}

// Next returns the first occurrence strictly after `after` that falls inside month (YYYY-MM, UTC).
// It returns nil once the month has no occurrences left.
func (s *Schedule) Next(month string, after time.Time) (*time.Time, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("invalid goal month %q: %w", month, err)
	}
	monthEnd := monthStart.AddDate(0, 1, 0)

	// parsed per call; DTStart mutates the rule
	r, err := rrule.StrToRRule(s.rule)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder rrule: %w", err)
	}
	r.DTStart(monthStart)

	next := r.After(after.UTC(), false)
	if next.IsZero() || !next.Before(monthEnd) {
		return nil, nil
	}
	return &next, nil
}

// First returns a new goal's first reminder. A goal set after the month's last occurrence gets a
// single wrap-up reminder at the first occurrence of the following month instead.
// It returns nil when that has passed too.
func (s *Schedule) First(month string, after time.Time) (*time.Time, error) {
	next, err := s.Next(month, after)
	if err != nil || next != nil {
		return next, err
	}

	monthStart, _ := time.Parse("2006-01", month)
	return s.Next(monthStart.AddDate(0, 1, 0).Format("2006-01"), after)
}
