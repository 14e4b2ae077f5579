package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/courtforms/formschema/internal/schema"
)

// Options control one import run.
type Options struct {
	// CategoryFilter restricts the run to form codes with this prefix.
	CategoryFilter string

	// DryRun executes the full pipeline, validation included, but performs
	// no durable writes. Stats and errors report as in a live run.
	DryRun bool

	// PruneStaleFields deletes previously-imported fields absent from the
	// new schema, when the store supports pruning. Off by default: manual
	// curation on existing field rows must survive re-imports.
	PruneStaleFields bool

	// BatchSize caps how many forms one run processes, after filtering and
	// ordering. Zero means no cap.
	BatchSize int

	Verbose bool
}

// FieldPruner is the optional store capability behind PruneStaleFields.
type FieldPruner interface {
	// PruneFields removes a form's fields whose names are not in keep.
	PruneFields(ctx context.Context, formID int64, keep []string) (removed int, err error)
}

// FormFinder is the optional read-only store capability dry runs use to
// report the same created/updated split a live run would produce.
type FormFinder interface {
	FormExists(ctx context.Context, code string) (bool, error)
}

// Coordinator drives the schema pipeline end-to-end over many forms:
// normalize, validate, upsert, accumulate stats. Forms are processed
// strictly sequentially; one bad form is recorded and the run moves on.
type Coordinator struct {
	normalizer *schema.Normalizer
	validator  *schema.Validator
	forms      FormStore
	categories CategoryStore
	opts       Options
	logger     *log.Logger
}

// NewCoordinator wires a coordinator from its collaborators. logger may be
// nil to silence progress output.
func NewCoordinator(
	normalizer *schema.Normalizer,
	validator *schema.Validator,
	forms FormStore,
	categories CategoryStore,
	opts Options,
	logger *log.Logger,
) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Coordinator{
		normalizer: normalizer,
		validator:  validator,
		forms:      forms,
		categories: categories,
		opts:       opts,
		logger:     logger,
	}
}

// Import runs the pipeline over every form the source yields and returns
// the run's stats. A source that cannot be read at all is catastrophic and
// aborts before any form is processed; everything after that point is
// partial-failure, recorded per form in the stats.
func (c *Coordinator) Import(ctx context.Context, source MetadataSource) (*RunStats, error) {
	records, err := source.Forms(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading metadata source: %w", err)
	}

	stats := NewRunStats(c.opts.DryRun)
	defer func() { stats.Duration = time.Since(stats.StartedAt) }()

	records = c.filterAndSort(records)
	c.logger.Printf("importing %d forms (dry_run=%t)", len(records), c.opts.DryRun)

	ensured := make(map[string]bool)
	for _, record := range records {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if err := c.importForm(ctx, record, stats, ensured); err != nil {
			stats.RecordError(record.FormNumber, err.Error())
			c.logger.Printf("form %s failed: %v", record.FormNumber, err)
		}
	}

	return stats, nil
}

// filterAndSort applies the category filter and establishes the
// deterministic processing order: category offset first, numeric suffix
// second, code as tiebreaker.
func (c *Coordinator) filterAndSort(records []FormMetadata) []FormMetadata {
	kept := make([]FormMetadata, 0, len(records))
	for _, r := range records {
		if MatchesFilter(r.FormNumber, c.opts.CategoryFilter) {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		ki := SortKey(CategoryForCode(kept[i].FormNumber), kept[i].FormNumber)
		kj := SortKey(CategoryForCode(kept[j].FormNumber), kept[j].FormNumber)
		if ki != kj {
			return ki < kj
		}
		return kept[i].FormNumber < kept[j].FormNumber
	})
	if c.opts.BatchSize > 0 && len(kept) > c.opts.BatchSize {
		kept = kept[:c.opts.BatchSize]
	}
	return kept
}

// importForm runs one form through normalize -> validate -> persist. The
// returned error marks the form failed; the run continues regardless.
func (c *Coordinator) importForm(ctx context.Context, record FormMetadata, stats *RunStats, ensured map[string]bool) error {
	code := strings.ToUpper(strings.TrimSpace(record.FormNumber))
	if code == "" {
		return fmt.Errorf("form record has no form_number")
	}

	if len(record.FieldNames) == 0 && record.IsFillable {
		c.logger.Printf("form %s: fillable but no field names, skipping", code)
		stats.FormsSkipped++
		return nil
	}

	category := CategoryForCode(code)
	fields := c.normalizer.Normalize(code, descriptorsFor(record))
	doc := schema.Document(schema.FormMetadata{
		Code:        code,
		Title:       titleFor(record, code),
		PDFFilename: record.Filename,
		Category:    category.Slug,
	}, fields)

	result := c.validator.Validate(doc)
	for _, w := range result.Warnings {
		stats.Warnings = append(stats.Warnings, fmt.Sprintf("%s: %s", code, w))
		c.logger.Printf("form %s: warning: %s", code, w)
	}
	if !result.Valid() {
		return fmt.Errorf("validation failed: %s", strings.Join(result.Errors, "; "))
	}

	if c.opts.DryRun {
		// Full pipeline, no durable writes. When the store can report
		// existence, mirror the created/updated split a live run would
		// produce; without a store everything counts as created.
		if finder, ok := c.forms.(FormFinder); ok {
			exists, err := finder.FormExists(ctx, code)
			if err != nil {
				return fmt.Errorf("checking form existence: %w", err)
			}
			if exists {
				stats.FormsUpdated++
				stats.FieldsUpdated += len(fields)
				return nil
			}
		}
		stats.FormsCreated++
		stats.FieldsCreated += len(fields)
		return nil
	}

	return c.persistForm(ctx, code, category, record, fields, stats, ensured)
}

func (c *Coordinator) persistForm(
	ctx context.Context,
	code string,
	category Category,
	record FormMetadata,
	fields []schema.NormalizedField,
	stats *RunStats,
	ensured map[string]bool,
) error {
	if !ensured[category.Slug] {
		created, err := c.categories.EnsureCategory(ctx, category.Slug, category.Name, category.Offset)
		if err != nil {
			return fmt.Errorf("ensuring category %s: %w", category.Slug, err)
		}
		if created {
			stats.CategoriesCreated++
		}
		ensured[category.Slug] = true
	}

	formID, created, err := c.forms.UpsertForm(ctx, FormRecord{
		Code:        code,
		Title:       titleFor(record, code),
		PDFFilename: record.Filename,
		Category:    category.Slug,
		Position:    SortKey(category, code),
		Pages:       record.NumPages,
		Fillable:    record.IsFillable,
	})
	if err != nil {
		return fmt.Errorf("upserting form: %w", err)
	}
	if created {
		stats.FormsCreated++
	} else {
		stats.FormsUpdated++
	}

	for _, f := range fields {
		fieldCreated, err := c.forms.UpsertField(ctx, formID, f.SanitizedName, FieldRecord{
			Label:        f.Label,
			Type:         f.Type,
			Section:      f.Section,
			SharedKey:    f.SharedFieldKey,
			Position:     f.Position,
			PDFFieldName: f.PDFFieldName,
		})
		if err != nil {
			return fmt.Errorf("upserting field %s: %w", f.SanitizedName, err)
		}
		if fieldCreated {
			stats.FieldsCreated++
		} else {
			stats.FieldsUpdated++
		}
	}

	if c.opts.PruneStaleFields {
		if pruner, ok := c.forms.(FieldPruner); ok {
			keep := make([]string, len(fields))
			for i, f := range fields {
				keep[i] = f.SanitizedName
			}
			removed, err := pruner.PruneFields(ctx, formID, keep)
			if err != nil {
				return fmt.Errorf("pruning stale fields: %w", err)
			}
			stats.FieldsPruned += removed
		}
	}

	if c.opts.Verbose {
		c.logger.Printf("form %s: %d fields persisted", code, len(fields))
	}
	return nil
}

// descriptorsFor builds the raw descriptor stream for one form, deriving a
// per-field PDF type hint from the form's reported widget-type counts by
// prefix matching on the field's own name segment.
func descriptorsFor(record FormMetadata) []schema.RawFieldDescriptor {
	descriptors := make([]schema.RawFieldDescriptor, 0, len(record.FieldNames))
	for _, name := range record.FieldNames {
		descriptors = append(descriptors, schema.RawFieldDescriptor{
			RawName:         name,
			PDFReportedType: typeHintFor(name, record.FieldTypes),
		})
	}
	return descriptors
}

var hintSanitizer = schema.NewSanitizer()

// typeHintFor returns the PDF-reported type whose key prefixes the field's
// own (lowercased) name segment, favoring longer keys.
func typeHintFor(rawName string, fieldTypes map[string]int) string {
	if len(fieldTypes) == 0 {
		return ""
	}

	segment := strings.ReplaceAll(hintSanitizer.Sanitize(rawName), "_", "")

	best := ""
	for key := range fieldTypes {
		k := strings.ToLower(key)
		if strings.HasPrefix(segment, k) && len(k) > len(best) {
			best = k
		}
	}
	return best
}

// titleFor picks the form title, falling back to the code when the source
// record carries none.
func titleFor(record FormMetadata, code string) string {
	if record.Title != "" {
		return record.Title
	}
	return fmt.Sprintf("Form %s", code)
}
