package aggregation

import (
	"math"
	"sort"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
)

// CalendarMark is what the calendar shows on a day the volunteer has a record for
type CalendarMark struct {
	Category model.Category
	Status   model.Status
}

// BuildCalendarMarks maps each record's date (YYYY-MM-DD) to its category and status.
// All statuses are included. When two records share a date the later one in input order wins.
func BuildCalendarMarks(records []model.JoinEvent) (map[string]CalendarMark, []model.DataQualityWarning) {
	entries, warnings := prepare(records)
	return calendarMarks(entries), warnings
}

func calendarMarks(entries []entry) map[string]CalendarMark {
	marks := make(map[string]CalendarMark)
	for _, e := range entries {
		if !e.dateOK {
			continue
		}
		marks[e.date.Format(DateKeyLayout)] = CalendarMark{Category: e.category, Status: e.status}
	}
	return marks
}

// CategoryHours is one row of the category summary
type CategoryHours struct {
	Category          model.Category
	Hours             float64
	PercentageOfTotal int
}

// BuildCategorySummary sums accepted hours per category inside the window.
// Rows are ordered by hours descending, then category name.
func BuildCategorySummary(records []model.JoinEvent, window Window) ([]CategoryHours, []model.DataQualityWarning) {
	entries, warnings := prepare(records)
	return categorySummary(entries, window), warnings
}

func categorySummary(entries []entry, window Window) []CategoryHours {
	sums := make(map[model.Category]float64)
	var total float64
	for _, e := range entries {
		if !e.accepted() || e.category == "" || !window.includes(e) {
			continue
		}
		sums[e.category] += e.hours
		total += e.hours
	}

	rows := make([]CategoryHours, 0, len(sums))
	for c, h := range sums {
		row := CategoryHours{Category: c, Hours: h}
		if total > 0 {
			row.PercentageOfTotal = int(math.Round(h / total * 100))
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Hours != rows[j].Hours {
			return rows[i].Hours > rows[j].Hours
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// SkillProfile is the per-skill percentage built from accepted hours
type SkillProfile struct {
	Skills map[model.Skill]float64
	// Overall is the mean over the full skill taxonomy, zero-valued skills included
	Overall float64
	// Unmapped counts accepted records whose category has no skill mapping
	Unmapped           int
	UnmappedCategories []model.Category
	Warnings           []model.DataQualityWarning
}

// BuildSkillProfile credits hours*multiplier to each skill mapped from an accepted record's category.
// Each skill is clamped to 100 after every addition.
func BuildSkillProfile(records []model.JoinEvent, policy *progression.Policy) SkillProfile {
	entries, warnings := prepare(records)
	profile := skillProfile(entries, policy)
	profile.Warnings = warnings
	return profile
}

func skillProfile(entries []entry, policy *progression.Policy) SkillProfile {
	profile := SkillProfile{Skills: make(map[model.Skill]float64, len(model.AllSkills))}
	for _, s := range model.AllSkills {
		profile.Skills[s] = 0
	}

	unmapped := make(map[model.Category]bool)
	for _, e := range entries {
		if !e.accepted() {
			continue
		}
		skills, ok := policy.SkillsFor(string(e.category))
		if !ok {
			profile.Unmapped++
			unmapped[e.category] = true
			continue
		}
		for _, s := range skills {
			profile.Skills[s] = math.Min(100, profile.Skills[s]+e.hours*policy.SkillHourMultiplier)
		}
	}

	var sum float64
	for _, s := range model.AllSkills {
		sum += profile.Skills[s]
	}
	profile.Overall = sum / float64(len(model.AllSkills))

	for c := range unmapped {
		profile.UnmappedCategories = append(profile.UnmappedCategories, c)
	}
	sort.Slice(profile.UnmappedCategories, func(i, j int) bool {
		return profile.UnmappedCategories[i] < profile.UnmappedCategories[j]
	})
	return profile
}

// Badge is an earned achievement
type Badge struct {
	ID        string
	Name      string
	Metric    progression.Metric
	Threshold float64
}

// ComputeBadges returns every badge whose counter meets or exceeds its threshold, in table order
func ComputeBadges(totalHours float64, totalEvents int, thresholds []progression.BadgeThreshold) []Badge {
	var badges []Badge
	for _, t := range thresholds {
		var value float64
		switch t.Metric {
		case progression.MetricHours:
			value = totalHours
		case progression.MetricEvents:
			value = float64(totalEvents)
		default:
			continue
		}
		if value >= t.Threshold {
			badges = append(badges, Badge{ID: t.ID, Name: t.Name, Metric: t.Metric, Threshold: t.Threshold})
		}
	}
	return badges
}

// ComputeNextEligibleDate returns the earliest date a donor may give blood again.
// It is advisory and never used to block a join.
func ComputeNextEligibleDate(lastDonation time.Time, cooldownDays int) time.Time {
	return lastDonation.AddDate(0, 0, cooldownDays)
}

// TotalsView holds the all-time counters badges are computed from
type TotalsView struct {
	Hours  float64
	Events int
}

// Totals sums all-time accepted hours and counts accepted records. Duplicates are counted.
func Totals(records []model.JoinEvent) (TotalsView, []model.DataQualityWarning) {
	entries, warnings := prepare(records)
	return totals(entries), warnings
}

func totals(entries []entry) TotalsView {
	var t TotalsView
	for _, e := range entries {
		if !e.accepted() {
			continue
		}
		t.Hours += e.hours
		t.Events++
	}
	return t
}

// CategoryCount is one row of the monthly overview
type CategoryCount struct {
	Category model.Category
	Events   int
}

// BuildMonthlyActivity counts accepted events per category inside the window,
// ordered by count descending, then category name
func BuildMonthlyActivity(records []model.JoinEvent, window Window) ([]CategoryCount, []model.DataQualityWarning) {
	entries, warnings := prepare(records)
	return monthlyActivity(entries, window), warnings
}

func monthlyActivity(entries []entry, window Window) []CategoryCount {
	counts := make(map[model.Category]int)
	for _, e := range entries {
		if !e.accepted() || e.category == "" || !window.includes(e) {
			continue
		}
		counts[e.category]++
	}
	rows := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		rows = append(rows, CategoryCount{Category: c, Events: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Events != rows[j].Events {
			return rows[i].Events > rows[j].Events
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// DonationEligibility is the advisory blood-donation schedule
type DonationEligibility struct {
	LastDonation time.Time
	NextEligible time.Time
}

// NextDonation finds the latest accepted blood donation and adds the policy cooldown.
// ok is false when the volunteer has no dated accepted donation.
func NextDonation(records []model.JoinEvent, policy *progression.Policy) (DonationEligibility, bool) {
	entries, _ := prepare(records)
	return nextDonation(entries, policy)
}

func nextDonation(entries []entry, policy *progression.Policy) (DonationEligibility, bool) {
	var last time.Time
	found := false
	for _, e := range entries {
		if !e.accepted() || !e.dateOK || e.category != model.CategoryBloodDonation {
			continue
		}
		if !found || e.date.After(last) {
			last, found = e.date, true
		}
	}
	if !found {
		return DonationEligibility{}, false
	}
	return DonationEligibility{
		LastDonation: last,
		NextEligible: ComputeNextEligibleDate(last, policy.BloodDonationCooldownDays),
	}, true
}

// GoalProgress compares a monthly goal against accepted hours in its category and month
type GoalProgress struct {
	Goal          model.Goal
	AchievedHours float64
	Percent       int
	Met           bool
}

// BuildGoalProgress computes progress for each goal, preserving goal order
func BuildGoalProgress(goals []model.Goal, records []model.JoinEvent) []GoalProgress {
	entries, _ := prepare(records)
	return goalProgress(goals, entries)
}

func goalProgress(goals []model.Goal, entries []entry) []GoalProgress {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		gp := GoalProgress{Goal: g}
		window, err := ParseWindow(g.Month)
		category := model.NormalizeCategory(g.Category)
		if err == nil && !window.IsAllTime() {
			for _, e := range entries {
				if e.accepted() && e.category == category && window.includes(e) {
					gp.AchievedHours += e.hours
				}
			}
		}
		if g.TargetHours > 0 {
			gp.Percent = int(math.Min(100, math.Round(gp.AchievedHours/g.TargetHours*100)))
			gp.Met = gp.AchievedHours >= g.TargetHours
		}
		out = append(out, gp)
	}
	return out
}
