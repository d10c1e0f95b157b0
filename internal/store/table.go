// Package store implements the flat-file table storage shared by the
// repositories. Each table is a UTF-8 CSV file whose header row fixes the
// column order; the header order is the file-format contract.
//
// Failures degrade rather than propagate: a failed read yields an empty table
// and a failed write is logged and swallowed, so an interactive session never
// crashes on storage trouble. There is no locking between Load and Save;
// callers own read-modify-write sequencing (single active writer assumed).
package store

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	"chirp/internal/middleware"
)

// Table holds the in-memory contents of one flat-file table.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with the given column headers.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// Store reads and writes flat-file tables.
type Store struct {
	logger *slog.Logger
}

// New returns a Store logging through the given logger. A nil logger falls
// back to slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// EnsureTable creates an empty table file with the given column headers if it
// does not already exist, creating parent directories as needed. Existing
// files are left untouched.
func (s *Store) EnsureTable(path string, columns []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Load reads all rows of the table at path. On any failure (missing file,
// malformed CSV, wrong header) it logs the problem and returns an empty table
// with the canonical columns so callers degrade to "no data".
func (s *Store) Load(path string, columns []string) *Table {
	f, err := os.Open(path)
	if err != nil {
		s.fail(path, "load", err)
		return NewTable(columns)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		s.fail(path, "load", err)
		return NewTable(columns)
	}
	if len(records) == 0 || !equalColumns(records[0], columns) {
		s.logger.Warn("table header mismatch, treating as empty",
			slog.String("path", path),
			slog.Any("expected", columns))
		middleware.StorageErrors.WithLabelValues(filepath.Base(path), "load").Inc()
		return NewTable(columns)
	}

	return &Table{Columns: columns, Rows: records[1:]}
}

// Save overwrites the table at path. The contents are written to a temporary
// file in the same directory and renamed into place so a concurrent reader
// never observes a partial file. Failures are logged and swallowed.
func (s *Store) Save(path string, t *Table) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		s.fail(path, "save", err)
		return
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	err = w.Write(t.Columns)
	for _, row := range t.Rows {
		if err != nil {
			break
		}
		err = w.Write(row)
	}
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		os.Remove(tmpName)
		s.fail(path, "save", err)
	}
}

func (s *Store) fail(path, op string, err error) {
	s.logger.Error("table "+op+" failed",
		slog.String("path", path),
		slog.String("error", err.Error()))
	middleware.StorageErrors.WithLabelValues(filepath.Base(path), op).Inc()
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
