package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/courtforms/formschema/internal/importer"
)

// JSONManifest reads per-form metadata records from a JSON file produced by
// an external extraction step. The file holds an array of records; see
// importer.FormMetadata for the shape.
type JSONManifest struct {
	path string
}

// NewJSONManifest creates a manifest source for the given file path.
func NewJSONManifest(path string) *JSONManifest {
	return &JSONManifest{path: path}
}

// Forms parses the manifest. An unreadable or malformed file is
// catastrophic: there is nothing to iterate, so the whole run aborts. A
// record without field names is kept and degrades to an empty field list
// downstream.
func (m *JSONManifest) Forms(_ context.Context) ([]importer.FormMetadata, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", m.path, err)
	}

	var records []importer.FormMetadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", m.path, err)
	}

	return records, nil
}
