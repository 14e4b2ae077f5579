package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryForCode(t *testing.T) {
	tests := []struct {
		code string
		slug string
	}{
		{"SC-100", "small-claims"},
		{"SC-104A", "small-claims"},
		{"sc-100", "small-claims"},
		{"FW-001", "fee-waiver"},
		{"POS-040", "proof-of-service"},
		{"FL-100", "family-law"},
		{"CIV-110", "civil"},
		{"CM-010", "case-management"},
		{"XX-999", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.slug, CategoryForCode(tt.code).Slug)
		})
	}
}

func TestNumericSuffix(t *testing.T) {
	assert.Equal(t, 100, NumericSuffix("SC-100"))
	assert.Equal(t, 104, NumericSuffix("SC-104A"))
	assert.Equal(t, 40, NumericSuffix("POS-040"))
	assert.Equal(t, 0, NumericSuffix("SC"))
	assert.Equal(t, 0, NumericSuffix(""))
}

func TestSortKeyGroupsCategories(t *testing.T) {
	sc := SortKey(CategoryForCode("SC-999"), "SC-999")
	fw := SortKey(CategoryForCode("FW-001"), "FW-001")
	fl := SortKey(CategoryForCode("FL-100"), "FL-100")

	// Small Claims always sorts before other categories, even with a large
	// numeric suffix.
	assert.Less(t, sc, fw)
	assert.Less(t, fw, fl)
}

func TestSortKeySurvivesLargeSuffixes(t *testing.T) {
	// A three-digit suffix must not bleed into the next category's range.
	sc := SortKey(CategoryForCode("SC-9999"), "SC-9999")
	fw := SortKey(CategoryForCode("FW-001"), "FW-001")
	assert.Less(t, sc, fw)
}

func TestMatchesFilter(t *testing.T) {
	assert.True(t, MatchesFilter("SC-100", ""))
	assert.True(t, MatchesFilter("SC-100", "SC"))
	assert.True(t, MatchesFilter("sc-100", "sc"))
	assert.False(t, MatchesFilter("FL-100", "SC"))
}

func TestSummarizeCapsErrors(t *testing.T) {
	stats := NewRunStats(false)
	for i := 0; i < 5; i++ {
		stats.RecordError("SC-100", "boom")
	}

	var b strings.Builder
	stats.Summarize(&b, 3)
	out := b.String()

	assert.Contains(t, out, "errors:     5")
	assert.Contains(t, out, "... and 2 more")
	assert.Equal(t, 3, strings.Count(out, "[SC-100] boom"))
}
