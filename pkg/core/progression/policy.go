// Package progression holds the declarative rules that turn accepted volunteer hours into
// skill percentages, badges and blood-donation eligibility.
//
// A Policy is plain data. It can be loaded from YAML so thresholds can be retuned without
// touching the aggregation code.
package progression

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Metric is the cumulative counter a badge threshold is compared against
type Metric string

const (
	MetricHours  Metric = "hours"
	MetricEvents Metric = "events"
)

// DefaultSkillHourMultiplier is the percentage points credited to each mapped skill per accepted hour
const DefaultSkillHourMultiplier = 3.0

// DefaultBloodDonationCooldownDays is the minimum interval between two whole-blood donations (8 weeks)
const DefaultBloodDonationCooldownDays = 56

// BadgeThreshold awards the badge ID/Name once Metric reaches Threshold
type BadgeThreshold struct {
	ID        string  `yaml:"id"`
	Metric    Metric  `yaml:"metric"`
	Threshold float64 `yaml:"threshold"`
	Name      string  `yaml:"name"`
}

// Policy is the full set of progression rules
type Policy struct {
	CategorySkills            map[model.Category][]model.Skill `yaml:"categorySkills"`
	SkillHourMultiplier       float64                          `yaml:"skillHourMultiplier"`
	Badges                    []BadgeThreshold                 `yaml:"badges"`
	BloodDonationCooldownDays int                              `yaml:"bloodDonationCooldownDays"`
}

// Default returns the reference policy
func Default() *Policy {
	return &Policy{
		CategorySkills: map[model.Category][]model.Skill{
			model.CategoryBeachClean:     {model.SkillCommunication, model.SkillTeamwork},
			model.CategoryElderlyCare:    {model.SkillAdaptability, model.SkillCommunication},
			model.CategoryFoodSecurity:   {model.SkillTeamwork, model.SkillOrganizational},
			model.CategoryFundraising:    {model.SkillCommunication, model.SkillTimeManagement},
			model.CategoryBloodDonation:  {model.SkillTeamwork, model.SkillAdaptability},
			model.CategoryDisasterRelief: {model.SkillTeamwork, model.SkillOrganizational, model.SkillTimeManagement},
			model.CategoryTeaching:       {model.SkillCommunication, model.SkillOrganizational},
			model.CategoryAnimalWelfare:  {model.SkillAdaptability, model.SkillCommunication},
		},
		SkillHourMultiplier: DefaultSkillHourMultiplier,
		Badges: []BadgeThreshold{
			{ID: "hours-10", Metric: MetricHours, Threshold: 10, Name: "Star Badge"},
			{ID: "hours-50", Metric: MetricHours, Threshold: 50, Name: "Hero Badge"},
			{ID: "hours-80", Metric: MetricHours, Threshold: 80, Name: "Superhero Badge"},
			{ID: "events-10", Metric: MetricEvents, Threshold: 10, Name: "Helping Hand"},
			{ID: "events-30", Metric: MetricEvents, Threshold: 30, Name: "Community Champion"},
			{ID: "events-50", Metric: MetricEvents, Threshold: 50, Name: "Volunteer Legend"},
		},
		BloodDonationCooldownDays: DefaultBloodDonationCooldownDays,
	}
}

// LoadFromPath reads a YAML policy file and validates it.
// Unknown keys are rejected so that a typo cannot silently fall back to a zero value.
func LoadFromPath(path string) (*Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var raw Policy
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	// Category keys in the file are free text; fold them onto canonical names
	p := &Policy{
		CategorySkills:            make(map[model.Category][]model.Skill, len(raw.CategorySkills)),
		SkillHourMultiplier:       raw.SkillHourMultiplier,
		Badges:                    raw.Badges,
		BloodDonationCooldownDays: raw.BloodDonationCooldownDays,
	}
	for category, skills := range raw.CategorySkills {
		c := model.NormalizeCategory(string(category))
		p.CategorySkills[c] = append(p.CategorySkills[c], skills...)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the policy table and returns a *model.ConfigurationError listing every problem
func (p *Policy) Validate() error {
	var problems []string

	if p.SkillHourMultiplier <= 0 || math.IsInf(p.SkillHourMultiplier, 0) || math.IsNaN(p.SkillHourMultiplier) {
		problems = append(problems, fmt.Sprintf("skillHourMultiplier must be a positive number, got %v", p.SkillHourMultiplier))
	}
	if p.BloodDonationCooldownDays <= 0 {
		problems = append(problems, fmt.Sprintf("bloodDonationCooldownDays must be positive, got %d", p.BloodDonationCooldownDays))
	}

	for _, c := range model.KnownCategories {
		if len(p.CategorySkills[c]) == 0 {
			problems = append(problems, fmt.Sprintf("category %q has no skill mapping", c))
		}
	}
	for c, skills := range p.CategorySkills {
		for _, s := range skills {
			if !s.IsValid() {
				problems = append(problems, fmt.Sprintf("category %q maps to unknown skill %q", c, s))
			}
		}
	}

	seen := make(map[string]bool)
	for i, b := range p.Badges {
		if b.ID == "" {
			problems = append(problems, fmt.Sprintf("badges[%d] has no id", i))
		} else if seen[b.ID] {
			problems = append(problems, fmt.Sprintf("badges[%d] duplicates id %q", i, b.ID))
		}
		seen[b.ID] = true

		if b.Metric != MetricHours && b.Metric != MetricEvents {
			problems = append(problems, fmt.Sprintf("badges[%d] has unknown metric %q", i, b.Metric))
		}
		if b.Threshold < 0 || math.IsNaN(b.Threshold) {
			problems = append(problems, fmt.Sprintf("badges[%d] has invalid threshold %v", i, b.Threshold))
		}
		if b.Name == "" {
			problems = append(problems, fmt.Sprintf("badges[%d] has no name", i))
		}
	}

	if len(problems) > 0 {
		return &model.ConfigurationError{Problems: problems}
	}
	return nil
}

// SkillsFor returns the skills credited for a category, normalizing the raw value first.
// The boolean is false when the category has no mapping.
func (p *Policy) SkillsFor(rawCategory string) ([]model.Skill, bool) {
	skills, ok := p.CategorySkills[model.NormalizeCategory(rawCategory)]
	return skills, ok && len(skills) > 0
}
