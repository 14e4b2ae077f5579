package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		rawName  string
		pdfType  string
		expected FieldType
	}{
		// PDF-reported type takes precedence over name patterns.
		{"checkbox_hint_wins", "AnyField", "checkbox", FieldTypeCheckbox},
		{"checkbox_hint_case_insensitive", "AnyField", "CheckBox", FieldTypeCheckbox},
		{"select_hint", "AnyField", "select", FieldTypeSelect},
		{"choice_hint", "AnyField", "choice", FieldTypeSelect},
		{"dropdown_hint", "AnyField", "dropdown", FieldTypeSelect},
		{"hint_beats_date_name", "HearingDate", "checkbox", FieldTypeCheckbox},

		// Name-based classification, first match wins.
		{"signature", "PlaintiffSignature", "", FieldTypeSignature},
		{"sig_suffix", "ApplicantSig", "", FieldTypeSignature},
		{"date", "HearingDate", "", FieldTypeDate},
		{"dob", "DOB", "", FieldTypeDate},
		{"date_beats_currency", "PaymentDueDate", "", FieldTypeDate},
		{"email", "PlaintiffEmail", "", FieldTypeEmail},
		{"email_hyphenated", "E-Mail", "", FieldTypeEmail},
		{"phone", "DaytimePhone", "", FieldTypeTel},
		{"fax", "FaxNumber", "", FieldTypeTel},
		{"currency_amount", "ClaimAmount", "", FieldTypeCurrency},
		{"currency_fee", "FilingFee", "", FieldTypeCurrency},
		{"address", "StreetAddress", "", FieldTypeAddress},
		{"zip", "ZipCode", "", FieldTypeAddress},
		{"checkbox_by_name", "CheckBox12", "", FieldTypeCheckbox},
		{"default_text", "AnyField", "", FieldTypeText},
		{"empty_name", "", "", FieldTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.rawName, tt.pdfType))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()

	inputs := []struct{ raw, hint string }{
		{"PlaintiffSignature", ""},
		{"AnyField", "checkbox"},
		{"ClaimAmount", ""},
	}
	for _, in := range inputs {
		first := c.Classify(in.raw, in.hint)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Classify(in.raw, in.hint))
		}
	}
}

func TestSkip(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		rawName string
		skip    bool
	}{
		{"Save", true},
		{"Print", true},
		{"ResetForm", true},
		{"Reset", true},
		{"Clear", true},
		{"Submit", true},
		{"Whiteout", true},
		{"NoticeHeader", true},
		{"NoticeFooter", true},
		{"#pageSet", true},
		{"SC-100[0].Page1[0].ResetForm[0]", true},
		{"PlaintiffName", false},
		{"CaseNumber", false},
		{"Notice", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.rawName, func(t *testing.T) {
			assert.Equal(t, tt.skip, c.Skip(tt.rawName))
		})
	}
}

func TestPII(t *testing.T) {
	c := NewClassifier()

	assert.True(t, c.PII("SSN", nil))
	assert.True(t, c.PII("SocialSecurityNumber", nil))
	assert.True(t, c.PII("DateOfBirth", nil))
	assert.True(t, c.PII("DriversLicense", nil))
	assert.True(t, c.PII("PassportNumber", nil))
	assert.False(t, c.PII("PlaintiffName", nil))

	// Exact-match list extends detection without patterns.
	assert.True(t, c.PII("CustomSecret", []string{"CustomSecret"}))
	assert.False(t, c.PII("CustomSecret", []string{"OtherField"}))
}
