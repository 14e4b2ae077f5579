package schema

import "fmt"

// Normalizer turns a form's raw field descriptors into the ordered list of
// normalized field records persisted by the importer. It composes the
// sanitizer, classifier and shared-key detector; construct one per pipeline
// and pass it explicitly rather than sharing ambient state.
type Normalizer struct {
	sanitizer  *Sanitizer
	classifier *Classifier
	detector   *SharedKeyDetector
}

// NewNormalizer creates a normalizer with default components.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		sanitizer:  NewSanitizer(),
		classifier: NewClassifier(),
		detector:   NewSharedKeyDetector(),
	}
}

// NewNormalizerWith creates a normalizer from explicit components, e.g. a
// detector extended with custom shared-key patterns.
func NewNormalizerWith(sanitizer *Sanitizer, classifier *Classifier, detector *SharedKeyDetector) *Normalizer {
	return &Normalizer{sanitizer: sanitizer, classifier: classifier, detector: detector}
}

// Classifier exposes the normalizer's classifier for callers that need the
// skip/PII predicates directly.
func (n *Normalizer) Classifier() *Classifier {
	return n.classifier
}

// Normalize produces the normalized field list for one form.
//
// Utility and decorative fields are filtered before anything else, so
// positions are a dense 1-based sequence over survivors and skipped fields
// never leave gaps. Relative input order is preserved. Sanitized names are
// unique within the result: a later collision gets "_<position>" appended
// while the first occurrence keeps the bare name.
//
// Normalize never fails. A malformed descriptor (e.g. empty name) degrades
// to a best-effort text record instead of aborting the form.
func (n *Normalizer) Normalize(formCode string, rawFields []RawFieldDescriptor) []NormalizedField {
	fields := make([]NormalizedField, 0, len(rawFields))
	seen := make(map[string]bool, len(rawFields))

	position := 0
	for _, raw := range rawFields {
		if n.classifier.Skip(raw.RawName) {
			continue
		}
		position++

		name := n.sanitizer.Sanitize(raw.RawName)
		label := n.sanitizer.Label(name)
		section, _ := n.sanitizer.ExtractSection(raw.RawName)
		sharedKey, _ := n.detector.Detect(name, raw.RawName)

		// Collision suffix goes on last so labels and shared keys derive
		// from the bare name.
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, position)
		}
		seen[name] = true

		fields = append(fields, NormalizedField{
			SanitizedName:  name,
			Label:          label,
			Type:           n.classifier.Classify(raw.RawName, raw.PDFReportedType),
			Section:        section,
			SharedFieldKey: sharedKey,
			Position:       position,
			PDFFieldName:   raw.RawName,
		})
	}

	return fields
}

// Document assembles a validated-ready schema document from form metadata
// and normalized fields, grouping fields by section. Fields without a
// section land under the empty section name.
func Document(meta FormMetadata, fields []NormalizedField) FormSchemaDocument {
	sections := make(map[string][]NormalizedField)
	for _, f := range fields {
		sections[f.Section] = append(sections[f.Section], f)
	}
	return FormSchemaDocument{Metadata: meta, Sections: sections}
}
