package importer

import (
	"regexp"
	"strconv"
	"strings"
)

// Category groups related court forms for navigation and ordering.
type Category struct {
	Prefix string
	Slug   string
	Name   string
	// Offset orders whole categories relative to each other; Small Claims
	// sorts first.
	Offset int
}

// knownCategories maps form-number prefixes to categories in display order.
var knownCategories = []Category{
	{Prefix: "SC", Slug: "small-claims", Name: "Small Claims", Offset: 0},
	{Prefix: "FW", Slug: "fee-waiver", Name: "Fee Waiver", Offset: 1},
	{Prefix: "POS", Slug: "proof-of-service", Name: "Proof of Service", Offset: 2},
	{Prefix: "FL", Slug: "family-law", Name: "Family Law", Offset: 3},
	{Prefix: "CIV", Slug: "civil", Name: "Civil", Offset: 4},
	{Prefix: "CM", Slug: "case-management", Name: "Case Management", Offset: 5},
}

// otherCategory is the fallback for unrecognized prefixes.
var otherCategory = Category{Slug: "other", Name: "Other", Offset: 9}

var formCodePattern = regexp.MustCompile(`^([A-Za-z]+)-?(\d+)?`)

// CategoryForCode resolves a form code like "SC-100A" to its category by
// longest matching prefix.
func CategoryForCode(code string) Category {
	m := formCodePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return otherCategory
	}

	prefix := m[1]
	best := otherCategory
	bestLen := 0
	for _, c := range knownCategories {
		if strings.HasPrefix(prefix, c.Prefix) && len(c.Prefix) > bestLen {
			best = c
			bestLen = len(c.Prefix)
		}
	}
	return best
}

// KnownCategorySlug reports whether slug names a recognized category,
// the fallback included.
func KnownCategorySlug(slug string) bool {
	if slug == otherCategory.Slug {
		return true
	}
	for _, c := range knownCategories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// NumericSuffix extracts the numeric part of a form code ("SC-100A" -> 100).
// Codes without digits yield zero.
func NumericSuffix(code string) int {
	m := formCodePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil || m[2] == "" {
		return 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return n
}

// SortKey computes the cross-category ordering position for a form. The
// multiplier leaves room for four-digit form numbers, so categories group
// together and forms order by their numeric suffix within one category.
func SortKey(category Category, code string) int {
	return category.Offset*10000 + NumericSuffix(code)
}

// MatchesFilter reports whether a form code passes a category-prefix filter.
// An empty filter matches everything.
func MatchesFilter(code, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(code)), strings.ToUpper(filter))
}
