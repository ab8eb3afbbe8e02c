package model

import (
	"strings"
)

// Category is the canonical, normalized name of a kind of volunteer activity
type Category string

const (
	CategoryBeachClean     Category = "beach clean"
	CategoryBloodDonation  Category = "blood donation"
	CategoryElderlyCare    Category = "elderly care"
	CategoryFoodSecurity   Category = "food security & distribution"
	CategoryFundraising    Category = "fundraising events"
	CategoryDisasterRelief Category = "disaster relief"
	CategoryTeaching       Category = "teaching & tutoring"
	CategoryAnimalWelfare  Category = "animal welfare & shelter support"
)

// KnownCategories lists every category an event can be published under
var KnownCategories = []Category{
	CategoryBeachClean,
	CategoryBloodDonation,
	CategoryElderlyCare,
	CategoryFoodSecurity,
	CategoryFundraising,
	CategoryDisasterRelief,
	CategoryTeaching,
	CategoryAnimalWelfare,
}

// categoryAliases maps cleaned free-text spellings seen in stored records to the canonical category.
// Keys are already lower-cased with separators collapsed to single spaces.
var categoryAliases = map[string]Category{
	"beach cleanup":                  CategoryBeachClean,
	"beach cleaning":                 CategoryBeachClean,
	"food security distribution":     CategoryFoodSecurity,
	"food security and distribution": CategoryFoodSecurity,
	"fundraising":                    CategoryFundraising,
	"fundraising event":              CategoryFundraising,
	"teaching tutoring":              CategoryTeaching,
	"teaching and tutoring":          CategoryTeaching,
	"animal welfare shelter support": CategoryAnimalWelfare,
	"animal welfare":                 CategoryAnimalWelfare,
}

// NormalizeCategory cleans a free-text category and maps it onto its canonical form.
// Values that are not recognised are returned cleaned (trimmed, lower-cased, single-spaced)
// so that they still group consistently; use ParseCategory to detect them.
func NormalizeCategory(raw string) Category {
	cleaned := cleanCategory(raw)
	if alias, ok := categoryAliases[cleaned]; ok {
		return alias
	}
	return Category(cleaned)
}

// ParseCategory normalizes raw and reports whether it is one of the KnownCategories
func ParseCategory(raw string) (Category, bool) {
	c := NormalizeCategory(raw)
	return c, c.IsKnown()
}

// IsKnown reports whether c is one of the KnownCategories
func (c Category) IsKnown() bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Title returns the category in title case for display, e.g. "Beach Clean"
func (c Category) Title() string {
	words := strings.Fields(string(c))
	for i, w := range words {
		if w == "&" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func cleanCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
