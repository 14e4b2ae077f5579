package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() FormSchemaDocument {
	return FormSchemaDocument{
		Metadata: FormMetadata{
			Code:        "SC-100",
			Title:       "Plaintiff's Claim and ORDER to Go to Small Claims Court",
			PDFFilename: "sc100.pdf",
			Category:    "small-claims",
		},
		Sections: map[string][]NormalizedField{
			"": {
				{SanitizedName: "plaintiff_name", Label: "Plaintiff Name", Type: FieldTypeText, Position: 1, SharedFieldKey: "plaintiff:name"},
				{SanitizedName: "claim_amount", Label: "Claim Amount", Type: FieldTypeCurrency, Position: 2},
			},
		},
	}
}

func allowAll(string) bool { return true }
func denyAll(string) bool  { return false }

func TestValidateCleanDocument(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	result := v.Validate(validDocument())

	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateMissingMetadataKeys(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc := FormSchemaDocument{
		Metadata: FormMetadata{Code: "SC-100"},
		Sections: map[string][]NormalizedField{},
	}
	result := v.Validate(doc)

	// One distinct error per missing required key; empty sections alone is
	// not an error.
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "title")
	assert.Contains(t, result.Errors[1], "pdf_filename")
	assert.Contains(t, result.Errors[2], "category")
}

func TestValidateMissingMetadataBlock(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	result := v.Validate(FormSchemaDocument{Sections: map[string][]NormalizedField{}})

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "form_metadata missing")
}

func TestValidateNilSections(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc := validDocument()
	doc.Sections = nil
	result := v.Validate(doc)

	assert.False(t, result.Valid())
}

func TestValidateInvalidFieldType(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc := validDocument()
	doc.Sections[""][0].Type = FieldType("ouija_board")
	result := v.Validate(doc)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "invalid field type")
}

func TestValidateMissingNameAndLabel(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc := validDocument()
	doc.Sections[""][0].SanitizedName = ""
	doc.Sections[""][1].Label = ""
	result := v.Validate(doc)

	require.Len(t, result.Errors, 2)
}

func TestValidateDuplicateNamesAcrossSections(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc := validDocument()
	doc.Sections["Party Info"] = []NormalizedField{
		{SanitizedName: "plaintiff_name", Label: "Plaintiff Name", Type: FieldTypeText, Position: 3},
	}
	result := v.Validate(doc)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "duplicate field name: plaintiff_name")
}

func TestValidateWarnings(t *testing.T) {
	v := NewValidator(denyAll, denyAll)

	doc := validDocument()
	doc.Sections[""][1].SharedFieldKey = "plaintiff_name" // missing namespace
	result := v.Validate(doc)

	assert.True(t, result.Valid(), "warnings must not block")
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "not namespaced")
	assert.Contains(t, result.Warnings[1], "pdf file not found")
	assert.Contains(t, result.Warnings[2], "unknown category")
}

func TestValidateNamespacedSharedKeyNoWarning(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	result := v.Validate(validDocument())
	assert.Empty(t, result.Warnings)
}

func TestValidateNilCollaboratorsSkipChecks(t *testing.T) {
	v := NewValidator(nil, nil)

	result := v.Validate(validDocument())
	assert.Empty(t, result.Warnings)
}

func TestValidateStrict(t *testing.T) {
	v := NewValidator(allowAll, allowAll)

	doc, err := v.ValidateStrict(validDocument())
	require.NoError(t, err)
	assert.Equal(t, "SC-100", doc.Metadata.Code)

	bad := validDocument()
	bad.Metadata.Title = ""
	_, err = v.ValidateStrict(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
