package schema

import "sort"

// FieldType represents the semantic input type of a form field.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeEmail     FieldType = "email"
	FieldTypeTel       FieldType = "tel"
	FieldTypeNumber    FieldType = "number"
	FieldTypeDate      FieldType = "date"
	FieldTypeCurrency  FieldType = "currency"
	FieldTypeAddress   FieldType = "address"
	FieldTypeSignature FieldType = "signature"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeSelect    FieldType = "select"
	FieldTypeHidden    FieldType = "hidden"
	FieldTypeReadonly  FieldType = "readonly"
)

// ValidFieldTypes is the closed set of field types accepted by the validator.
var ValidFieldTypes = map[FieldType]bool{
	FieldTypeText:      true,
	FieldTypeTextarea:  true,
	FieldTypeEmail:     true,
	FieldTypeTel:       true,
	FieldTypeNumber:    true,
	FieldTypeDate:      true,
	FieldTypeCurrency:  true,
	FieldTypeAddress:   true,
	FieldTypeSignature: true,
	FieldTypeCheckbox:  true,
	FieldTypeSelect:    true,
	FieldTypeHidden:    true,
	FieldTypeReadonly:  true,
}

// IsValid reports whether t belongs to the closed field-type set.
func (t FieldType) IsValid() bool {
	return ValidFieldTypes[t]
}

// RawFieldDescriptor is one AcroForm field as extracted from a source PDF.
// It is immutable input; the pipeline never mutates descriptors.
type RawFieldDescriptor struct {
	RawName         string `json:"raw_name"`
	PDFReportedType string `json:"pdf_reported_type,omitempty"`
	PageNumber      int    `json:"page_number,omitempty"`
}

// NormalizedField is the pipeline's principal output entity.
//
// SanitizedName is unique within a form (collisions are disambiguated by
// appending the position). Section and SharedFieldKey use the empty string
// for absence. Position is 1-based and dense over non-skipped fields.
type NormalizedField struct {
	SanitizedName  string    `json:"sanitized_name"`
	Label          string    `json:"label"`
	Type           FieldType `json:"field_type"`
	Section        string    `json:"section,omitempty"`
	SharedFieldKey string    `json:"shared_field_key,omitempty"`
	Position       int       `json:"position"`
	PDFFieldName   string    `json:"pdf_field_name"`
}

// FormMetadata describes one form at the document level.
type FormMetadata struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	PDFFilename string `json:"pdf_filename"`
	Category    string `json:"category"`
}

// FormSchemaDocument is a fully-assembled form schema: form metadata plus
// the normalized fields grouped into sections. Produced per form and
// validated before persistence.
type FormSchemaDocument struct {
	Metadata FormMetadata                 `json:"form_metadata"`
	Sections map[string][]NormalizedField `json:"sections"`
}

// Fields returns every field of the document across all sections, ordered
// by position.
func (d FormSchemaDocument) Fields() []NormalizedField {
	var fields []NormalizedField
	for _, section := range d.Sections {
		fields = append(fields, section...)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Position < fields[j].Position
	})
	return fields
}

// ValidationResult separates blocking errors from advisory warnings.
// A document with a non-empty Errors list must not be persisted.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the document may be persisted.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}
