package schema

import "regexp"

// namePattern is one entry of an ordered decision table: the first pattern
// that matches a raw field name decides the outcome. Ordering carries the
// precedence contract, so the tables below must stay sorted from most to
// least specific.
type namePattern struct {
	Name    string
	Pattern *regexp.Regexp
	Type    FieldType
}

// defaultTypePatterns returns the name-based classification table evaluated
// after the PDF-reported type hints. Date patterns come before currency so
// that names like "PaymentDueDate" classify as dates, and the generic text
// fallback is applied by the classifier when nothing here matches.
func defaultTypePatterns() []namePattern {
	return []namePattern{
		{
			Name:    "signature",
			Pattern: regexp.MustCompile(`(?i)(signature|\bsig\b|sig$)`),
			Type:    FieldTypeSignature,
		},
		{
			Name:    "date",
			Pattern: regexp.MustCompile(`(?i)(date|\bdob\b|birthdate)`),
			Type:    FieldTypeDate,
		},
		{
			Name:    "email",
			Pattern: regexp.MustCompile(`(?i)e-?mail`),
			Type:    FieldTypeEmail,
		},
		{
			Name:    "phone",
			Pattern: regexp.MustCompile(`(?i)(phone|telephone|\btel\b|tel$|fax|mobile)`),
			Type:    FieldTypeTel,
		},
		{
			Name:    "currency",
			Pattern: regexp.MustCompile(`(?i)(amount|fee|cost|payment|due)`),
			Type:    FieldTypeCurrency,
		},
		{
			Name:    "address",
			Pattern: regexp.MustCompile(`(?i)(address|street|city|state|zip)`),
			Type:    FieldTypeAddress,
		},
		{
			Name:    "checkbox_literal",
			Pattern: regexp.MustCompile(`(?i)checkbox`),
			Type:    FieldTypeCheckbox,
		},
	}
}

// defaultSkipPatterns returns patterns for utility and decorative fields
// that must never surface in a normalized schema. Matched against the
// field's own (final) name segment with array indexes stripped.
func defaultSkipPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Action controls: save/print/reset/clear/submit buttons.
		regexp.MustCompile(`(?i)\b(save|print|reset(form)?|clear|submit)\b`),
		// Decorative markers that exist for document mechanics only.
		regexp.MustCompile(`(?i)(white_?out|notice(header|footer))`),
		// Page-set and template markers start with '#'.
		regexp.MustCompile(`^#`),
	}
}

// defaultPIIPatterns returns patterns for personally identifying fields.
// Used for reporting only; PII fields still import.
func defaultPIIPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bssn\b`),
		regexp.MustCompile(`(?i)social[\s_-]*security`),
		regexp.MustCompile(`(?i)(date[\s_-]*of[\s_-]*birth|\bdob\b|birthdate)`),
		regexp.MustCompile(`(?i)driver'?s?[\s_-]*licen[sc]e`),
		regexp.MustCompile(`(?i)passport`),
	}
}

// sharedKeyPattern maps a name pattern to a namespaced cross-form key.
type sharedKeyPattern struct {
	Pattern *regexp.Regexp
	Key     string
}

// defaultSharedKeyPatterns returns the ordered table of cross-form concept
// patterns. Role+concept entries precede concept-only entries so the most
// specific match wins. Every key is "<role>:<concept>"; the validator warns
// on anything un-namespaced, so new entries must keep the separator.
func defaultSharedKeyPatterns() []sharedKeyPattern {
	return []sharedKeyPattern{
		// Party names.
		{regexp.MustCompile(`plaintiff.*name$`), "plaintiff:name"},
		{regexp.MustCompile(`defendant.*name$`), "defendant:name"},
		{regexp.MustCompile(`petitioner.*name$`), "petitioner:name"},
		{regexp.MustCompile(`respondent.*name$`), "respondent:name"},
		{regexp.MustCompile(`attorney.*name$`), "attorney:name"},

		// Party contact details.
		{regexp.MustCompile(`plaintiff.*address`), "plaintiff:address"},
		{regexp.MustCompile(`defendant.*address`), "defendant:address"},
		{regexp.MustCompile(`plaintiff.*(phone|telephone)`), "plaintiff:phone"},
		{regexp.MustCompile(`defendant.*(phone|telephone)`), "defendant:phone"},
		{regexp.MustCompile(`plaintiff.*e_?mail`), "plaintiff:email"},
		{regexp.MustCompile(`defendant.*e_?mail`), "defendant:email"},

		// Case and court concepts.
		{regexp.MustCompile(`case.*(number|no)`), "case:number"},
		{regexp.MustCompile(`case.*name`), "case:name"},
		{regexp.MustCompile(`court.*county`), "court:county"},
		{regexp.MustCompile(`court.*(branch|address)`), "court:branch"},
		{regexp.MustCompile(`court.*name`), "court:name"},

		// Claim and scheduling concepts.
		{regexp.MustCompile(`claim.*amount`), "claim:amount"},
		{regexp.MustCompile(`(hearing|trial).*date`), "hearing:date"},
		{regexp.MustCompile(`filing.*date`), "filing:date"},
	}
}
