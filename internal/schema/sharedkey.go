package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// SharedKeyDetector matches sanitized field names against known cross-form
// concept patterns and assigns namespaced keys of the form "role:concept"
// used for autofill linking. Patterns are evaluated in a fixed priority
// order with role+concept entries before generic concept-only entries;
// the first match wins.
type SharedKeyDetector struct {
	patterns []sharedKeyPattern
}

// NewSharedKeyDetector creates a detector with the default pattern table.
func NewSharedKeyDetector() *SharedKeyDetector {
	return &SharedKeyDetector{patterns: defaultSharedKeyPatterns()}
}

// Detect returns the shared key for a field, matching the sanitized name
// first and falling back to the raw name. ok is false when no pattern
// matches. The detector never emits an un-namespaced key.
func (d *SharedKeyDetector) Detect(sanitizedName, rawName string) (key string, ok bool) {
	raw := strings.ToLower(rawName)
	for _, p := range d.patterns {
		if p.Pattern.MatchString(sanitizedName) || p.Pattern.MatchString(raw) {
			return p.Key, true
		}
	}
	return "", false
}

// customPatternFile is the on-disk format for extending the pattern table.
type customPatternFile struct {
	Patterns []customPattern `yaml:"patterns"`
}

type customPattern struct {
	Match string `yaml:"match"`
	Key   string `yaml:"key"`
}

// LoadCustomPatterns appends patterns from a YAML file to the detector's
// table. Custom patterns run after the defaults, so they only apply where
// no built-in pattern matched. Entries with invalid regexes or keys missing
// the "role:concept" namespace separator are rejected.
func (d *SharedKeyDetector) LoadCustomPatterns(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading shared key patterns: %w", err)
	}

	var file customPatternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing shared key patterns: %w", err)
	}

	for i, entry := range file.Patterns {
		if !strings.Contains(entry.Key, ":") {
			return fmt.Errorf("pattern %d: key %q is not namespaced as role:concept", i, entry.Key)
		}
		re, err := regexp.Compile(entry.Match)
		if err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
		d.patterns = append(d.patterns, sharedKeyPattern{Pattern: re, Key: entry.Key})
	}

	return nil
}
