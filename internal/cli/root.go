// Package cli wires the formschema commands.
package cli

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/courtforms/formschema/internal/config"
)

// Version is the build version, overridable via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "formschema",
	Short: "Import court form field schemas into a local database",
	Long: `formschema turns directories of fillable court form PDFs (or pre-built
metadata manifests) into normalized field schemas: sanitized field names,
semantic field types, section grouping and cross-form shared field keys,
persisted in a local SQLite database.`,
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default ~/.formschema/forms.db)")
	rootCmd.PersistentFlags().String("loglevel", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the progress logger for a run. Anything below info is
// discarded unless debug logging is on.
func newLogger(cfg *config.Config, verbose bool) *log.Logger {
	if verbose || cfg.IsDebug() {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}
