package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/courtforms/formschema/internal/config"
	"github.com/courtforms/formschema/internal/importer"
	"github.com/courtforms/formschema/internal/schema"
	"github.com/courtforms/formschema/internal/source"
	"github.com/courtforms/formschema/internal/storage/sqlite"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import form schemas into the database",
	Long: `Runs the full pipeline over every form in the metadata manifest (or,
without one, over every PDF in the directory): sanitize field names,
classify field types, detect shared fields, validate the schema and
upsert it. Re-running is safe; forms match by code, fields by name.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("metadata", "", "JSON metadata manifest (scans --dir directly when omitted)")
	importCmd.Flags().String("dir", ".", "Directory containing the form PDFs")
	importCmd.Flags().Int64("maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	importCmd.Flags().String("category-filter", "", "Only import forms whose code starts with this prefix")
	importCmd.Flags().Bool("dry-run", false, "Run the full pipeline without writing to the database")
	importCmd.Flags().Bool("skip-pdfs", false, "Skip the PDF file existence check during validation")
	importCmd.Flags().Bool("prune", false, "Delete previously-imported fields absent from the new schema")
	importCmd.Flags().String("patterns", "", "YAML file with additional shared field key patterns")
	importCmd.Flags().Int("batch-size", 0, "Maximum forms to process in one run (0 for all)")
	importCmd.Flags().Int("max-errors", 10, "Maximum per-form errors shown in the summary (0 for all)")
	importCmd.Flags().BoolP("verbose", "v", false, "Log per-form progress")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	dryRun, _ := flags.GetBool("dry-run")
	skipPDFs, _ := flags.GetBool("skip-pdfs")
	prune, _ := flags.GetBool("prune")
	verbose, _ := flags.GetBool("verbose")
	categoryFilter, _ := flags.GetString("category-filter")
	patternsPath, _ := flags.GetString("patterns")
	maxErrors, _ := flags.GetInt("max-errors")
	batchSize, _ := flags.GetInt("batch-size")

	logger := newLogger(cfg, verbose)

	normalizer, err := buildNormalizer(patternsPath)
	if err != nil {
		return err
	}
	validator := buildValidator(cfg, skipPDFs)

	// A dry run only opens the database when the file already exists;
	// creating it would be a durable side effect. With a store available
	// the dry-run stats report the same created/updated split a live run
	// would produce.
	var store *sqlite.Store
	var formStore importer.FormStore
	var categoryStore importer.CategoryStore
	if !dryRun || databaseExists(cfg) {
		store, err = sqlite.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		formStore, categoryStore = store, store
	}

	coordinator := importer.NewCoordinator(normalizer, validator, formStore, categoryStore, importer.Options{
		CategoryFilter:   categoryFilter,
		DryRun:           dryRun,
		PruneStaleFields: prune,
		BatchSize:        batchSize,
		Verbose:          verbose,
	}, logger)

	stats, err := coordinator.Import(cmd.Context(), metadataSource(cfg, logger))
	if err != nil {
		return err
	}

	stats.Summarize(cmd.OutOrStdout(), maxErrors)
	if !dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "persisted to %s\n", store.Path())
	}
	if len(stats.Errors) > 0 {
		return fmt.Errorf("%d of %d forms failed", stats.FormsFailed, stats.TotalForms())
	}
	return nil
}

// databaseExists reports whether the configured (or default) database file
// is already present.
func databaseExists(cfg *config.Config) bool {
	path := cfg.DatabasePath
	if path == "" {
		p, err := sqlite.DefaultPath()
		if err != nil {
			return false
		}
		path = p
	}
	_, err := os.Stat(path)
	return err == nil
}

// buildNormalizer assembles the pipeline front half, with custom shared
// field patterns layered on when a patterns file is given.
func buildNormalizer(patternsPath string) (*schema.Normalizer, error) {
	detector := schema.NewSharedKeyDetector()
	if patternsPath != "" {
		if err := detector.LoadCustomPatterns(patternsPath); err != nil {
			return nil, fmt.Errorf("loading shared field patterns: %w", err)
		}
	}
	return schema.NewNormalizerWith(schema.NewSanitizer(), schema.NewClassifier(), detector), nil
}

// buildValidator wires the validator's environment checks: PDF presence
// against the configured directory and category slugs against the known
// set.
func buildValidator(cfg *config.Config, skipPDFs bool) *schema.Validator {
	var pdfExists func(string) bool
	if !skipPDFs {
		dir := cfg.PDFDirectory
		pdfExists = func(filename string) bool {
			_, err := os.Stat(filepath.Join(dir, filename))
			return err == nil
		}
	}
	return schema.NewValidator(pdfExists, importer.KnownCategorySlug)
}

// metadataSource picks the run's input: a manifest when configured, a
// direct directory scan otherwise.
func metadataSource(cfg *config.Config, logger *log.Logger) importer.MetadataSource {
	if cfg.MetadataPath != "" {
		return source.NewJSONManifest(cfg.MetadataPath)
	}
	return source.NewDirectoryScanner(cfg.PDFDirectory, cfg.MaxFileSize, logger)
}
