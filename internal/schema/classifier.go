package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Classifier decides the semantic input type of a form field from its raw
// AcroForm name and an optional PDF-reported type hint. Classification is
// a pure function over its inputs: identical (rawName, pdfType) pairs
// always yield identical results.
type Classifier struct {
	typePatterns []namePattern
	skipPatterns []*regexp.Regexp
	piiPatterns  []*regexp.Regexp
}

// NewClassifier creates a classifier with the default decision tables.
func NewClassifier() *Classifier {
	return &Classifier{
		typePatterns: defaultTypePatterns(),
		skipPatterns: defaultSkipPatterns(),
		piiPatterns:  defaultPIIPatterns(),
	}
}

// Classify determines the field type for a raw name and an optional
// PDF-reported type hint.
//
// The PDF-reported type is authoritative when it distinguishes checkbox or
// choice widgets, since those cannot be reliably inferred from naming alone.
// Everything else is classified from the name through the ordered pattern
// table, first match wins, falling back to text. Classify never fails.
func (c *Classifier) Classify(rawName, pdfReportedType string) FieldType {
	hint := strings.ToLower(strings.TrimSpace(pdfReportedType))
	switch {
	case hint == "checkbox":
		return FieldTypeCheckbox
	case hint == "select" || hint == "choice" || hint == "dropdown":
		return FieldTypeSelect
	}

	for _, p := range c.typePatterns {
		if p.Pattern.MatchString(rawName) {
			return p.Type
		}
	}
	return FieldTypeText
}

// Skip reports whether the field is a utility or decorative field that must
// be excluded from the normalized schema. The check runs against the
// field's own name segment, so hierarchical names like
// "SC-100[0].Page1[0].ResetForm[0]" are filtered the same as bare ones.
func (c *Classifier) Skip(rawName string) bool {
	segment := finalSegment(rawName)
	for _, p := range c.skipPatterns {
		if p.MatchString(segment) {
			return true
		}
	}
	return false
}

// PII reports whether the field likely holds personally identifying
// information, either by exact match against knownNames or by pattern.
// The result gates nothing; it exists for operator reporting.
func (c *Classifier) PII(rawName string, knownNames []string) bool {
	for _, known := range knownNames {
		if rawName == known {
			return true
		}
	}
	for _, p := range c.piiPatterns {
		if p.MatchString(rawName) {
			return true
		}
	}
	return false
}

// String describes the classifier's table sizes, useful in verbose logs.
func (c *Classifier) String() string {
	return fmt.Sprintf("Classifier{type: %d, skip: %d, pii: %d patterns}",
		len(c.typePatterns), len(c.skipPatterns), len(c.piiPatterns))
}
