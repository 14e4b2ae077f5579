package schema

import (
	"regexp"
	"strings"
)

var (
	arrayIndexPattern  = regexp.MustCompile(`\[\d+\]`)
	pageMarkerPattern  = regexp.MustCompile(`(?i)^page\d+$`)
	nonAlnumPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	repeatUnderscores  = regexp.MustCompile(`_+`)
	trailingDigitsOnly = regexp.MustCompile(`\d+$`)
)

// Sanitizer normalizes raw hierarchical PDF field names into canonical
// snake_case identifiers and extracts section groupings from intermediate
// hierarchy segments.
type Sanitizer struct{}

// NewSanitizer creates a field name sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize converts a raw AcroForm field name into a canonical snake_case
// identifier. Array-index suffixes are stripped anywhere in the name, only
// the final dot-separated segment is kept, numeric-only trailing suffixes
// are dropped before case conversion, camelCase boundaries become
// underscores, and any remaining symbol collapses to a single underscore.
//
// An empty input yields an empty output; callers must guard.
func (s *Sanitizer) Sanitize(rawName string) string {
	segment := finalSegment(rawName)
	segment = trailingDigitsOnly.ReplaceAllString(segment, "")
	return toSnakeCase(segment)
}

// ExtractSection derives a human-readable grouping label from the
// intermediate hierarchy segments of a raw field name. The first segment
// (form id) and the final segment (the field's own name) are never
// candidates, and page markers such as "Page1" are skipped. The innermost
// remaining segment wins. ok is false when no meaningful segment exists.
func (s *Sanitizer) ExtractSection(rawName string) (section string, ok bool) {
	stripped := arrayIndexPattern.ReplaceAllString(rawName, "")
	segments := strings.Split(stripped, ".")
	if len(segments) < 3 {
		return "", false
	}

	// Intermediate segments only, innermost first.
	for i := len(segments) - 2; i >= 1; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" || pageMarkerPattern.MatchString(seg) {
			continue
		}
		return Humanize(seg), true
	}
	return "", false
}

// Label produces the display label for a sanitized name: title-cased,
// space-separated words.
func (s *Sanitizer) Label(sanitizedName string) string {
	words := strings.Split(sanitizedName, "_")
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(w[:1])+w[1:])
	}
	return strings.Join(parts, " ")
}

// Humanize inserts spaces at camelCase boundaries and title-cases the
// result, e.g. "PartyInfo" -> "Party Info".
func Humanize(segment string) string {
	var b strings.Builder
	for i, r := range segment {
		if i > 0 && isUpper(r) && (isLower(rune(segment[i-1])) || isDigit(rune(segment[i-1]))) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// finalSegment strips array indexes and returns the last dot-separated
// segment of the name.
func finalSegment(rawName string) string {
	stripped := arrayIndexPattern.ReplaceAllString(rawName, "")
	segments := strings.Split(stripped, ".")
	return strings.TrimSpace(segments[len(segments)-1])
}

// toSnakeCase converts camelCase/PascalCase to snake_case and replaces
// symbols with underscores.
func toSnakeCase(segment string) string {
	var b strings.Builder
	for i, r := range segment {
		if i > 0 && isUpper(r) && (isLower(rune(segment[i-1])) || isDigit(rune(segment[i-1]))) {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}

	out := strings.ToLower(b.String())
	out = nonAlnumPattern.ReplaceAllString(out, "_")
	out = repeatUnderscores.ReplaceAllString(out, "_")
	return strings.Trim(out, "_")
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
