package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDocument is returned by ValidateStrict when a document has at
// least one blocking error.
var ErrInvalidDocument = errors.New("form schema document failed validation")

// Validator checks assembled form schema documents against structural
// invariants. Its only side effects are the two injected lookups, so a
// validator built with nil collaborators is fully pure (and skips the
// corresponding warnings).
type Validator struct {
	// PDFExists reports whether the referenced PDF file is present at its
	// expected path. Missing files are a warning, never an error.
	PDFExists func(path string) bool

	// CategoryExists reports whether a category slug is known to the
	// surrounding system. Unknown categories warn.
	CategoryExists func(slug string) bool
}

// NewValidator creates a validator with the given collaborators. Either may
// be nil to disable its advisory check.
func NewValidator(pdfExists, categoryExists func(string) bool) *Validator {
	return &Validator{PDFExists: pdfExists, CategoryExists: categoryExists}
}

// Validate runs every check independently and returns the combined result.
// Errors block persistence; warnings are advisory.
func (v *Validator) Validate(doc FormSchemaDocument) ValidationResult {
	var result ValidationResult

	result.Errors = append(result.Errors, v.metadataErrors(doc.Metadata)...)

	if doc.Sections == nil {
		result.Errors = append(result.Errors, "sections missing: document has no sections map")
	} else {
		errs, warns := v.fieldChecks(doc)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
	}

	result.Warnings = append(result.Warnings, v.metadataWarnings(doc.Metadata)...)

	return result
}

// ValidateStrict validates and returns the document unchanged when it
// passes, enabling fluent chaining. Any blocking error yields
// ErrInvalidDocument wrapped with the first message.
func (v *Validator) ValidateStrict(doc FormSchemaDocument) (FormSchemaDocument, error) {
	result := v.Validate(doc)
	if !result.Valid() {
		return doc, fmt.Errorf("%w: %s (%d errors)", ErrInvalidDocument, result.Errors[0], len(result.Errors))
	}
	return doc, nil
}

func (v *Validator) metadataErrors(meta FormMetadata) []string {
	var errs []string
	if meta == (FormMetadata{}) {
		errs = append(errs, "form_metadata missing")
		return errs
	}
	if meta.Title == "" {
		errs = append(errs, "form_metadata missing required key: title")
	}
	if meta.PDFFilename == "" {
		errs = append(errs, "form_metadata missing required key: pdf_filename")
	}
	if meta.Category == "" {
		errs = append(errs, "form_metadata missing required key: category")
	}
	return errs
}

func (v *Validator) metadataWarnings(meta FormMetadata) []string {
	var warns []string
	if meta.PDFFilename != "" && v.PDFExists != nil && !v.PDFExists(meta.PDFFilename) {
		warns = append(warns, fmt.Sprintf("pdf file not found: %s", meta.PDFFilename))
	}
	if meta.Category != "" && v.CategoryExists != nil && !v.CategoryExists(meta.Category) {
		warns = append(warns, fmt.Sprintf("unknown category: %s", meta.Category))
	}
	return warns
}

// fieldChecks validates every field across all sections. Duplicate name
// detection spans the whole document, not just one section.
func (v *Validator) fieldChecks(doc FormSchemaDocument) (errs, warns []string) {
	seen := make(map[string]bool)
	for _, field := range doc.Fields() {
		label := field.SanitizedName
		if label == "" {
			label = field.PDFFieldName
		}

		if field.SanitizedName == "" {
			errs = append(errs, fmt.Sprintf("field %q missing name", field.PDFFieldName))
		} else if seen[field.SanitizedName] {
			errs = append(errs, fmt.Sprintf("duplicate field name: %s", field.SanitizedName))
		}
		seen[field.SanitizedName] = true

		if field.Label == "" {
			errs = append(errs, fmt.Sprintf("field %q missing label", label))
		}
		if !field.Type.IsValid() {
			errs = append(errs, fmt.Sprintf("field %q has invalid field type: %q", label, field.Type))
		}
		if field.SharedFieldKey != "" && !strings.Contains(field.SharedFieldKey, ":") {
			warns = append(warns, fmt.Sprintf("field %q shared key %q is not namespaced", label, field.SharedFieldKey))
		}
	}
	return errs, warns
}
