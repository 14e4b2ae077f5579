package importer

import (
	"context"

	"github.com/courtforms/formschema/internal/schema"
)

// FormRecord carries the persistable attributes of one form.
type FormRecord struct {
	Code        string
	Title       string
	PDFFilename string
	Category    string
	Position    int
	Pages       int
	Fillable    bool
}

// FieldRecord carries the persistable attributes of one field.
type FieldRecord struct {
	Label        string
	Type         schema.FieldType
	Section      string
	SharedKey    string
	Position     int
	PDFFieldName string
}

// FormStore is the persistence collaborator the coordinator writes through.
// Its transactional and idempotency guarantees are its own concern; the
// coordinator only requires that upserts report whether they created or
// updated.
type FormStore interface {
	// UpsertForm matches by stable form code, overwriting metadata when the
	// form already exists. It never deletes existing fields.
	UpsertForm(ctx context.Context, record FormRecord) (formID int64, created bool, err error)

	// UpsertField matches by (form, sanitized name).
	UpsertField(ctx context.Context, formID int64, name string, record FieldRecord) (created bool, err error)
}

// CategoryStore manages form categories and resolves prefixes.
type CategoryStore interface {
	// EnsureCategory creates the category if absent. Implementations must
	// tolerate concurrent creation of the same slug by re-fetching on a
	// uniqueness conflict.
	EnsureCategory(ctx context.Context, slug, name string, position int) (created bool, err error)

	// CategoryExists reports whether a slug is known.
	CategoryExists(ctx context.Context, slug string) (bool, error)
}

// MetadataSource yields the per-form raw metadata records driving a run.
type MetadataSource interface {
	Forms(ctx context.Context) ([]FormMetadata, error)
}

// FormMetadata is one form's record from a metadata source. FieldTypes maps
// PDF-reported widget types to their occurrence counts and may be nil.
type FormMetadata struct {
	FormNumber  string         `json:"form_number"`
	Filename    string         `json:"filename"`
	Title       string         `json:"title,omitempty"`
	IsFillable  bool           `json:"is_fillable"`
	NumPages    int            `json:"num_pages"`
	TotalFields int            `json:"total_fields"`
	FieldNames  []string       `json:"field_names"`
	FieldTypes  map[string]int `json:"field_types,omitempty"`
	FileSize    int64          `json:"file_size"`
}
