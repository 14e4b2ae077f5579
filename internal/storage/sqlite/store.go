// Package sqlite persists imported form schemas in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/courtforms/formschema/internal/importer"
	"github.com/courtforms/formschema/internal/storage/sqlite/migrations"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is a SQLite-backed implementation of the importer's persistence
// collaborators: FormStore, CategoryStore and FieldPruner.
type Store struct {
	db   *sql.DB
	path string
}

var (
	_ importer.FormStore     = (*Store)(nil)
	_ importer.CategoryStore = (*Store)(nil)
	_ importer.FieldPruner   = (*Store)(nil)
	_ importer.FormFinder    = (*Store)(nil)
)

// DefaultPath returns the database location used when NewStore is given an
// empty path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".formschema", "forms.db"), nil
}

// NewStore opens (creating if needed) the database at path. If path is
// empty, defaults to ~/.formschema/forms.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode so a concurrent reader does not block the import run.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// UpsertForm matches by form code. It reports whether the row was created
// so the caller can distinguish first imports from re-runs. Existing fields
// are untouched.
func (s *Store) UpsertForm(ctx context.Context, record importer.FormRecord) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM forms WHERE code = ?", record.Code).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE forms
			SET title = ?, pdf_filename = ?, category = ?, position = ?,
			    pages = ?, fillable = ?, updated_at = ?
			WHERE id = ?
		`, record.Title, record.PDFFilename, record.Category, record.Position,
			record.Pages, boolToInt(record.Fillable), time.Now().UTC(), id)
		if err != nil {
			return 0, false, fmt.Errorf("updating form %s: %w", record.Code, err)
		}
		return id, false, nil

	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO forms (code, title, pdf_filename, category, position, pages, fillable)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, record.Code, record.Title, record.PDFFilename, record.Category,
			record.Position, record.Pages, boolToInt(record.Fillable))
		if err != nil {
			return 0, false, fmt.Errorf("inserting form %s: %w", record.Code, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("reading form id: %w", err)
		}
		return id, true, nil

	default:
		return 0, false, fmt.Errorf("looking up form %s: %w", record.Code, err)
	}
}

// UpsertField matches by (form, sanitized name).
func (s *Store) UpsertField(ctx context.Context, formID int64, name string, record importer.FieldRecord) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM fields WHERE form_id = ? AND name = ?", formID, name).Scan(&id)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, `
			UPDATE fields
			SET label = ?, type = ?, section = ?, shared_key = ?, position = ?,
			    pdf_field_name = ?, updated_at = ?
			WHERE id = ?
		`, record.Label, string(record.Type), record.Section, record.SharedKey,
			record.Position, record.PDFFieldName, time.Now().UTC(), id)
		if err != nil {
			return false, fmt.Errorf("updating field %s: %w", name, err)
		}
		return false, nil

	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO fields (form_id, name, label, type, section, shared_key, position, pdf_field_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, formID, name, record.Label, string(record.Type), record.Section,
			record.SharedKey, record.Position, record.PDFFieldName)
		if err != nil {
			return false, fmt.Errorf("inserting field %s: %w", name, err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("looking up field %s: %w", name, err)
	}
}

// EnsureCategory creates the category if absent. ON CONFLICT DO NOTHING
// makes it safe against a concurrent writer inserting the same slug.
func (s *Store) EnsureCategory(ctx context.Context, slug, name string, position int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (slug, name, position)
		VALUES (?, ?, ?)
		ON CONFLICT(slug) DO NOTHING
	`, slug, name, position)
	if err != nil {
		return false, fmt.Errorf("ensuring category %s: %w", slug, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// FormExists reports whether a form code is already persisted. Dry runs
// use it to split created from updated without writing.
func (s *Store) FormExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM forms WHERE code = ?", code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up form %s: %w", code, err)
	}
	return true, nil
}

// CategoryExists reports whether a slug is known.
func (s *Store) CategoryExists(ctx context.Context, slug string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE slug = ?", slug).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up category %s: %w", slug, err)
	}
	return true, nil
}

// PruneFields removes a form's fields whose names are not in keep. With an
// empty keep list it removes every field of the form.
func (s *Store) PruneFields(ctx context.Context, formID int64, keep []string) (int, error) {
	query := "DELETE FROM fields WHERE form_id = ?"
	args := []any{formID}
	if len(keep) > 0 {
		placeholders := strings.Repeat("?,", len(keep))
		query += " AND name NOT IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, name := range keep {
			args = append(args, name)
		}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning fields: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return int(n), nil
}

// StoredForm is a persisted form row.
type StoredForm struct {
	ID          int64
	Code        string
	Title       string
	PDFFilename string
	Category    string
	Position    int
	Pages       int
	Fillable    bool
	FieldCount  int
}

// StoredField is a persisted field row.
type StoredField struct {
	Name         string
	Label        string
	Type         string
	Section      string
	SharedKey    string
	Position     int
	PDFFieldName string
}

// GetForm fetches one form by code. Returns ErrNotFound when absent.
func (s *Store) GetForm(ctx context.Context, code string) (*StoredForm, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT f.id, f.code, f.title, f.pdf_filename, f.category, f.position,
		       f.pages, f.fillable,
		       (SELECT COUNT(*) FROM fields WHERE form_id = f.id)
		FROM forms f WHERE f.code = ?
	`, code)

	var form StoredForm
	var fillable int
	if err := row.Scan(&form.ID, &form.Code, &form.Title, &form.PDFFilename,
		&form.Category, &form.Position, &form.Pages, &fillable, &form.FieldCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning form %s: %w", code, err)
	}
	form.Fillable = fillable != 0
	return &form, nil
}

// ListForms returns all forms ordered by category position, then code.
func (s *Store) ListForms(ctx context.Context) ([]StoredForm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.code, f.title, f.pdf_filename, f.category, f.position,
		       f.pages, f.fillable,
		       (SELECT COUNT(*) FROM fields WHERE form_id = f.id)
		FROM forms f ORDER BY f.position, f.code
	`)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer rows.Close()

	var forms []StoredForm
	for rows.Next() {
		var form StoredForm
		var fillable int
		if err := rows.Scan(&form.ID, &form.Code, &form.Title, &form.PDFFilename,
			&form.Category, &form.Position, &form.Pages, &fillable, &form.FieldCount); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		form.Fillable = fillable != 0
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

// ListFields returns a form's fields in position order.
func (s *Store) ListFields(ctx context.Context, formID int64) ([]StoredField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, label, type, section, shared_key, position, pdf_field_name
		FROM fields WHERE form_id = ? ORDER BY position
	`, formID)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	defer rows.Close()

	var fields []StoredField
	for rows.Next() {
		var field StoredField
		if err := rows.Scan(&field.Name, &field.Label, &field.Type, &field.Section,
			&field.SharedKey, &field.Position, &field.PDFFieldName); err != nil {
			return nil, fmt.Errorf("scanning field: %w", err)
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

// SharedFieldUsage reports, per shared key, how many forms reference it.
// Useful for auditing cross-form prefill coverage.
func (s *Store) SharedFieldUsage(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT shared_key, COUNT(DISTINCT form_id)
		FROM fields WHERE shared_key != ''
		GROUP BY shared_key
	`)
	if err != nil {
		return nil, fmt.Errorf("querying shared field usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning usage row: %w", err)
		}
		usage[key] = count
	}
	return usage, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
