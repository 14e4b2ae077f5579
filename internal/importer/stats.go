package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// FormState tracks one form's progress through a run.
type FormState string

const (
	FormStatePending FormState = "pending"
	FormStateCreated FormState = "created"
	FormStateUpdated FormState = "updated"
	FormStateSkipped FormState = "skipped"
	FormStateFailed  FormState = "failed"
)

// ImportError records one per-form failure with its context.
type ImportError struct {
	Context   string    `json:"context"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RunStats accumulates counters for one coordinator invocation. It is owned
// exclusively by that invocation, never shared across runs, and discarded
// (or logged) at run end.
type RunStats struct {
	RunID     string        `json:"run_id"`
	DryRun    bool          `json:"dry_run"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	CategoriesCreated int `json:"categories_created"`
	FormsCreated      int `json:"forms_created"`
	FormsUpdated      int `json:"forms_updated"`
	FormsSkipped      int `json:"forms_skipped"`
	FormsFailed       int `json:"forms_failed"`
	FieldsCreated     int `json:"fields_created"`
	FieldsUpdated     int `json:"fields_updated"`
	FieldsPruned      int `json:"fields_pruned"`

	Warnings []string      `json:"warnings,omitempty"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// NewRunStats creates the accumulator for one run.
func NewRunStats(dryRun bool) *RunStats {
	return &RunStats{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
}

// RecordError appends a per-form error and bumps the failure counter.
func (s *RunStats) RecordError(context, message string) {
	s.FormsFailed++
	s.Errors = append(s.Errors, ImportError{
		Context:   context,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// TotalForms returns the number of forms the run touched.
func (s *RunStats) TotalForms() int {
	return s.FormsCreated + s.FormsUpdated + s.FormsSkipped + s.FormsFailed
}

// Summarize writes the operator-facing run report: totals, counts, and the
// first maxErrors error messages with context. The report shape is the same
// for dry and live runs.
func (s *RunStats) Summarize(w io.Writer, maxErrors int) {
	label := "import"
	if s.DryRun {
		label = "dry-run import"
	}

	fmt.Fprintf(w, "%s %s complete in %s\n", label, s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  forms:      %d processed (%d created, %d updated, %d skipped, %d failed)\n",
		s.TotalForms(), s.FormsCreated, s.FormsUpdated, s.FormsSkipped, s.FormsFailed)
	fmt.Fprintf(w, "  fields:     %d created, %d updated\n", s.FieldsCreated, s.FieldsUpdated)
	if s.FieldsPruned > 0 {
		fmt.Fprintf(w, "  pruned:     %d stale fields\n", s.FieldsPruned)
	}
	fmt.Fprintf(w, "  categories: %d created\n", s.CategoriesCreated)

	if len(s.Warnings) > 0 {
		fmt.Fprintf(w, "  warnings:   %d\n", len(s.Warnings))
	}

	if len(s.Errors) == 0 {
		return
	}
	fmt.Fprintf(w, "  errors:     %d\n", len(s.Errors))
	shown := len(s.Errors)
	if maxErrors > 0 && shown > maxErrors {
		shown = maxErrors
	}
	for _, e := range s.Errors[:shown] {
		fmt.Fprintf(w, "    [%s] %s\n", e.Context, e.Message)
	}
	if shown < len(s.Errors) {
		fmt.Fprintf(w, "    ... and %d more\n", len(s.Errors)-shown)
	}
}
