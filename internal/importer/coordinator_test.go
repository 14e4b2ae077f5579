package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtforms/formschema/internal/schema"
)

// memStore is an in-memory FormStore/CategoryStore for coordinator tests.
type memStore struct {
	categories map[string]bool
	forms      map[string]*memForm
	nextID     int64

	failFormCode string // UpsertForm fails for this code
}

type memForm struct {
	id     int64
	record FormRecord
	fields map[string]FieldRecord
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[string]bool),
		forms:      make(map[string]*memForm),
	}
}

func (m *memStore) EnsureCategory(_ context.Context, slug, _ string, _ int) (bool, error) {
	if m.categories[slug] {
		return false, nil
	}
	m.categories[slug] = true
	return true, nil
}

func (m *memStore) CategoryExists(_ context.Context, slug string) (bool, error) {
	return m.categories[slug], nil
}

func (m *memStore) FormExists(_ context.Context, code string) (bool, error) {
	_, ok := m.forms[code]
	return ok, nil
}

func (m *memStore) UpsertForm(_ context.Context, record FormRecord) (int64, bool, error) {
	if record.Code == m.failFormCode {
		return 0, false, errors.New("storage unavailable")
	}
	if f, ok := m.forms[record.Code]; ok {
		f.record = record
		return f.id, false, nil
	}
	m.nextID++
	m.forms[record.Code] = &memForm{
		id:     m.nextID,
		record: record,
		fields: make(map[string]FieldRecord),
	}
	return m.nextID, true, nil
}

func (m *memStore) UpsertField(_ context.Context, formID int64, name string, record FieldRecord) (bool, error) {
	for _, f := range m.forms {
		if f.id != formID {
			continue
		}
		_, exists := f.fields[name]
		f.fields[name] = record
		return !exists, nil
	}
	return false, errors.New("form not found")
}

func (m *memStore) PruneFields(_ context.Context, formID int64, keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	removed := 0
	for _, f := range m.forms {
		if f.id != formID {
			continue
		}
		for name := range f.fields {
			if !keepSet[name] {
				delete(f.fields, name)
				removed++
			}
		}
	}
	return removed, nil
}

// staticSource yields a fixed set of records.
type staticSource struct {
	records []FormMetadata
	err     error
}

func (s staticSource) Forms(context.Context) ([]FormMetadata, error) {
	return s.records, s.err
}

func allow(string) bool { return true }

func newTestCoordinator(store *memStore, opts Options) *Coordinator {
	return NewCoordinator(
		schema.NewNormalizer(),
		schema.NewValidator(allow, allow),
		store,
		store,
		opts,
		nil,
	)
}

func sampleRecords() []FormMetadata {
	return []FormMetadata{
		{
			FormNumber: "SC-100",
			Filename:   "sc100.pdf",
			IsFillable: true,
			NumPages:   6,
			FieldNames: []string{"PlaintiffName", "DefendantName", "ClaimAmount", "Save"},
		},
		{
			FormNumber: "FL-100",
			Filename:   "fl100.pdf",
			IsFillable: true,
			NumPages:   3,
			FieldNames: []string{"PetitionerName", "RespondentName"},
		},
	}
}

func TestImportCreatesFormsAndFields(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})

	stats, err := c.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FormsCreated)
	assert.Equal(t, 0, stats.FormsUpdated)
	assert.Equal(t, 0, stats.FormsFailed)
	assert.Equal(t, 5, stats.FieldsCreated, "Save must be filtered")
	assert.Equal(t, 2, stats.CategoriesCreated)

	form := store.forms["SC-100"]
	require.NotNil(t, form)
	assert.Equal(t, "small-claims", form.record.Category)
	assert.Len(t, form.fields, 3)
	assert.Contains(t, form.fields, "plaintiff_name")
}

func TestImportIdempotent(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})
	source := staticSource{records: sampleRecords()}

	first, err := c.Import(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 2, first.FormsCreated)
	assert.Equal(t, 0, first.FormsUpdated)

	second, err := c.Import(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FormsCreated)
	assert.Equal(t, 2, second.FormsUpdated)
	assert.Equal(t, 0, second.FieldsCreated)
	assert.Equal(t, 5, second.FieldsUpdated)

	// Field sets are identical after both runs.
	assert.Len(t, store.forms["SC-100"].fields, 3)
	assert.Len(t, store.forms["FL-100"].fields, 2)
}

func TestImportDryRunWritesNothing(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{DryRun: true})

	stats, err := c.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FormsCreated, "dry run still reports full stats")
	assert.Equal(t, 5, stats.FieldsCreated)
	assert.Empty(t, store.forms, "dry run must not persist")
	assert.Empty(t, store.categories)
}

func TestImportDryRunReportsUpdateSplit(t *testing.T) {
	store := newMemStore()

	live := newTestCoordinator(store, Options{})
	_, err := live.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	// A dry re-run against the populated store reports updates, matching
	// what a live re-run would do.
	dry := newTestCoordinator(store, Options{DryRun: true})
	stats, err := dry.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.FormsCreated)
	assert.Equal(t, 2, stats.FormsUpdated)
	assert.Equal(t, 5, stats.FieldsUpdated)
	assert.Equal(t, 0, stats.FieldsCreated)
}

func TestImportPartialFailure(t *testing.T) {
	store := newMemStore()
	store.failFormCode = "SC-100"
	c := newTestCoordinator(store, Options{})

	stats, err := c.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err, "one bad form must not abort the run")

	assert.Equal(t, 1, stats.FormsFailed)
	assert.Equal(t, 1, stats.FormsCreated)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "SC-100", stats.Errors[0].Context)
	assert.Contains(t, stats.Errors[0].Message, "storage unavailable")
	assert.False(t, stats.Errors[0].Timestamp.IsZero())
}

func TestImportValidationFailureRecorded(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})

	records := []FormMetadata{{
		FormNumber: "SC-100",
		// No filename: pdf_filename is a required metadata key.
		IsFillable: true,
		FieldNames: []string{"PlaintiffName"},
	}}
	stats, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FormsFailed)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0].Message, "pdf_filename")
	assert.Empty(t, store.forms)
}

func TestImportCatastrophicSourceAborts(t *testing.T) {
	c := newTestCoordinator(newMemStore(), Options{})

	_, err := c.Import(context.Background(), staticSource{err: errors.New("manifest unreadable")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest unreadable")
}

func TestImportCategoryFilter(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{CategoryFilter: "SC"})

	stats, err := c.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FormsCreated)
	assert.Contains(t, store.forms, "SC-100")
	assert.NotContains(t, store.forms, "FL-100")
}

func TestImportBatchSizeCapsRun(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{BatchSize: 1})

	stats, err := c.Import(context.Background(), staticSource{records: sampleRecords()})
	require.NoError(t, err)

	// SC-100 orders before FL-100 (small claims group first), so the cap
	// keeps it and drops the rest.
	assert.Equal(t, 1, stats.FormsCreated)
	assert.Contains(t, store.forms, "SC-100")
	assert.NotContains(t, store.forms, "FL-100")
}

func TestImportNeverDeletesStaleFieldsByDefault(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})

	records := sampleRecords()
	_, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	// Re-import with a shrunken field list; the removed field must survive.
	records[0].FieldNames = []string{"PlaintiffName"}
	_, err = c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	assert.Contains(t, store.forms["SC-100"].fields, "defendant_name")
	assert.Contains(t, store.forms["SC-100"].fields, "claim_amount")
}

func TestImportPruneStaleFieldsOptIn(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{PruneStaleFields: true})

	records := sampleRecords()
	_, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	records[0].FieldNames = []string{"PlaintiffName"}
	stats, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FieldsPruned)
	assert.NotContains(t, store.forms["SC-100"].fields, "defendant_name")
	assert.Contains(t, store.forms["SC-100"].fields, "plaintiff_name")
}

func TestImportSkipsFillableFormsWithoutFieldNames(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})

	records := []FormMetadata{{FormNumber: "SC-150", Filename: "sc150.pdf", IsFillable: true}}
	stats, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FormsSkipped)
	assert.Empty(t, store.forms)
}

func TestImportTypeHint(t *testing.T) {
	store := newMemStore()
	c := newTestCoordinator(store, Options{})

	records := []FormMetadata{{
		FormNumber: "SC-100",
		Filename:   "sc100.pdf",
		IsFillable: true,
		FieldNames: []string{"CheckBox12", "FillText7"},
		FieldTypes: map[string]int{"checkbox": 1, "filltext": 1},
	}}
	_, err := c.Import(context.Background(), staticSource{records: records})
	require.NoError(t, err)

	form := store.forms["SC-100"]
	require.NotNil(t, form)
	assert.Equal(t, schema.FieldTypeCheckbox, form.fields["check_box"].Type)
	assert.Equal(t, schema.FieldTypeText, form.fields["fill_text"].Type)
}
