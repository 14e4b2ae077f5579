package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/courtforms/formschema/internal/config"
	"github.com/courtforms/formschema/internal/importer"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate form schemas without importing them",
	Long: `Runs the full pipeline in dry-run mode and reports every validation
error and warning. Nothing is written; the database is not even opened.
Exits non-zero when any form fails validation.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("metadata", "", "JSON metadata manifest (scans --dir directly when omitted)")
	validateCmd.Flags().String("dir", ".", "Directory containing the form PDFs")
	validateCmd.Flags().Int64("maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	validateCmd.Flags().String("category-filter", "", "Only validate forms whose code starts with this prefix")
	validateCmd.Flags().Bool("skip-pdfs", false, "Skip the PDF file existence check")
	validateCmd.Flags().String("patterns", "", "YAML file with additional shared field key patterns")
	validateCmd.Flags().BoolP("verbose", "v", false, "Log per-form progress")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	skipPDFs, _ := flags.GetBool("skip-pdfs")
	verbose, _ := flags.GetBool("verbose")
	categoryFilter, _ := flags.GetString("category-filter")
	patternsPath, _ := flags.GetString("patterns")

	logger := newLogger(cfg, verbose)

	normalizer, err := buildNormalizer(patternsPath)
	if err != nil {
		return err
	}
	validator := buildValidator(cfg, skipPDFs)

	coordinator := importer.NewCoordinator(normalizer, validator, nil, nil, importer.Options{
		CategoryFilter: categoryFilter,
		DryRun:         true,
		Verbose:        verbose,
	}, logger)

	stats, err := coordinator.Import(cmd.Context(), metadataSource(cfg, logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, warning := range stats.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	for _, importErr := range stats.Errors {
		fmt.Fprintf(out, "error: [%s] %s\n", importErr.Context, importErr.Message)
	}

	valid := stats.TotalForms() - stats.FormsFailed
	fmt.Fprintf(out, "%d forms valid, %d failed, %d warnings\n",
		valid, stats.FormsFailed, len(stats.Warnings))

	if stats.FormsFailed > 0 {
		return fmt.Errorf("%d forms failed validation", stats.FormsFailed)
	}
	return nil
}
