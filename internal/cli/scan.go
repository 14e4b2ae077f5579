package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/courtforms/formschema/internal/config"
	"github.com/courtforms/formschema/internal/importer"
	"github.com/courtforms/formschema/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a PDF directory and emit a metadata manifest",
	Long: `Reads every PDF in the directory, extracts its AcroForm field names and
widget types, and writes the resulting metadata manifest as JSON. The
manifest can be reviewed, edited (titles, corrections) and fed back into
the import command via --metadata.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("dir", ".", "Directory containing the form PDFs")
	scanCmd.Flags().Int64("maxfilesize", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	scanCmd.Flags().String("out", "", "Output file (stdout when omitted)")
	scanCmd.Flags().String("format", "json", "Output format: json or text")
	scanCmd.Flags().BoolP("verbose", "v", false, "Log per-file progress")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	verbose, _ := flags.GetBool("verbose")
	outPath, _ := flags.GetString("out")
	format, _ := flags.GetString("format")

	logger := newLogger(cfg, verbose)
	scanner := source.NewDirectoryScanner(cfg.PDFDirectory, cfg.MaxFileSize, logger)

	forms, err := scanner.Forms(cmd.Context())
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(forms, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		data = append(data, '\n')
	case "text":
		data = formatScanText(forms)
	default:
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d form records to %s\n", len(forms), outPath)
	return nil
}

func formatScanText(forms []importer.FormMetadata) []byte {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tFILENAME\tFILLABLE\tPAGES\tFIELDS")
	for _, form := range forms {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\n",
			form.FormNumber, form.Filename, form.IsFillable, form.NumPages, form.TotalFields)
	}
	w.Flush()
	return buf.Bytes()
}
