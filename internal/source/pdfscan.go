package source

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/courtforms/formschema/internal/importer"
)

// DirectoryScanner derives per-form metadata records straight from a
// directory of PDFs, so the importer can run without a pre-built manifest.
// Field names and widget types come from each document's AcroForm
// dictionary.
type DirectoryScanner struct {
	dir         string
	maxFileSize int64
	logger      *log.Logger
}

// DefaultMaxFileSize bounds how large a scanned PDF may be.
const DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

// NewDirectoryScanner creates a scanner over dir. maxFileSize caps how
// large a scanned PDF may be; zero or negative selects DefaultMaxFileSize.
// logger may be nil.
func NewDirectoryScanner(dir string, maxFileSize int64, logger *log.Logger) *DirectoryScanner {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DirectoryScanner{dir: dir, maxFileSize: maxFileSize, logger: logger}
}

// Forms scans the directory and returns one record per readable PDF, in
// deterministic filename order. A directory that cannot be listed is
// catastrophic; a single unreadable PDF is logged and skipped.
func (s *DirectoryScanner) Forms(ctx context.Context) ([]importer.FormMetadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading pdf directory %s: %w", s.dir, err)
	}

	var records []importer.FormMetadata
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		record, err := s.scanFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// scanFile validates one PDF and extracts its form metadata.
func (s *DirectoryScanner) scanFile(path string) (*importer.FormMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), s.maxFileSize)
	}

	pages, err := pageCount(path)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}

	names, typeCounts, err := extractAcroFields(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	return &importer.FormMetadata{
		FormNumber:  formNumberFromFilename(filename),
		Filename:    filename,
		IsFillable:  len(names) > 0,
		NumPages:    pages,
		TotalFields: len(names),
		FieldNames:  names,
		FieldTypes:  typeCounts,
		FileSize:    info.Size(),
	}, nil
}

// pageCount opens the PDF with the lightweight reader to validate it and
// count pages.
func pageCount(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// extractAcroFields walks the document's AcroForm field tree and returns
// the fully-qualified field names in document order plus per-widget-type
// counts.
func extractAcroFields(path string) ([]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var names []string
	typeCounts := make(map[string]int)
	for _, fieldRef := range fieldsArray {
		collectField(ctx, fieldRef, "", &names, typeCounts)
	}

	if len(typeCounts) == 0 {
		typeCounts = nil
	}
	return names, typeCounts, nil
}

// collectField appends one field's qualified name and recurses into Kids,
// building dotted hierarchical names the way AcroForm viewers do.
func collectField(ctx *model.Context, fieldObj types.Object, parent string, names *[]string, typeCounts map[string]int) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil || fieldDict == nil {
		return
	}

	name := parent
	if nameObj, found := fieldDict.Find("T"); found {
		if partial, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && partial != "" {
			if name == "" {
				name = partial
			} else {
				name = name + "." + partial
			}
		}
	}

	// Terminal fields carry FT (possibly inherited); non-terminal nodes
	// just group their Kids.
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kids, err := ctx.DereferenceArray(kidsObj); err == nil && len(kids) > 0 {
			for _, kid := range kids {
				collectField(ctx, kid, name, names, typeCounts)
			}
			return
		}
	}

	if name == "" {
		return
	}
	*names = append(*names, name)
	if t := widgetType(ctx, fieldDict); t != "" {
		typeCounts[t]++
	}
}

// widgetType maps the FT entry to the importer's hint vocabulary.
func widgetType(ctx *model.Context, fieldDict types.Dict) string {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, ok := fieldDict.Find("Parent"); ok {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return widgetType(ctx, parentDict)
			}
		}
		return ""
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return ""
	}

	switch ftName {
	case "Btn":
		return "checkbox"
	case "Ch":
		return "select"
	case "Sig":
		return "signature"
	case "Tx":
		return "text"
	default:
		return ""
	}
}

// formNumberFromFilename derives the form code from a filename like
// "sc100.pdf" or "SC-100.pdf".
func formNumberFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.ToUpper(base)

	if strings.Contains(base, "-") {
		return base
	}

	// Insert the conventional dash between the alpha prefix and the
	// numeric part: "SC100A" -> "SC-100A".
	for i, r := range base {
		if r >= '0' && r <= '9' {
			if i == 0 {
				return base
			}
			return base[:i] + "-" + base[i:]
		}
	}
	return base
}
