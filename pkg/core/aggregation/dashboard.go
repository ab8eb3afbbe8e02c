package aggregation

import (
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
)

// Dashboard is every derived view for one volunteer, built from a single record set
type Dashboard struct {
	Window   Window
	Calendar map[string]CalendarMark
	Summary  []CategoryHours
	Skills   SkillProfile
	Totals   TotalsView
	Badges   []Badge
	Monthly  []CategoryCount
	Goals    []GoalProgress
	// Donation is nil when there is no accepted blood donation on record
	Donation *DonationEligibility
	Warnings []model.DataQualityWarning
}

// BuildDashboard checks the records once and derives all views from the same pass,
// so totals agree between views and each warning appears once.
// Badges always use all-time totals; the window only narrows the summary and monthly overview.
func BuildDashboard(records []model.JoinEvent, goals []model.Goal, policy *progression.Policy, window Window) Dashboard {
	entries, warnings := prepare(records)

	d := Dashboard{
		Window:   window,
		Calendar: calendarMarks(entries),
		Summary:  categorySummary(entries, window),
		Skills:   skillProfile(entries, policy),
		Totals:   totals(entries),
		Monthly:  monthlyActivity(entries, window),
		Goals:    goalProgress(goals, entries),
		Warnings: warnings,
	}
	d.Skills.Warnings = warnings
	d.Badges = ComputeBadges(d.Totals.Hours, d.Totals.Events, policy.Badges)
	if donation, ok := nextDonation(entries, policy); ok {
		d.Donation = &donation
	}
	return d
}
