// Package schema reads the CSV schema description, maps column type tokens
// to field kinds, validates the result and orders tables by their
// foreign-key dependencies.
package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Required header columns of the schema CSV.
const (
	HeaderTable  = "table_name"
	HeaderColumn = "column_name"
	HeaderType   = "column_type"
)

// Column is one raw CSV row: a column name and its unparsed type token.
type Column struct {
	Name string
	Type string
	Pos  Position
}

// Table is a named, ordered list of columns.
type Table struct {
	Name    string
	Columns []Column
	// Pos is the row where the table first appears.
	Pos Position
}

// Schema holds the tables in order of first appearance.
type Schema struct {
	Source string
	tables []*Table
	byName map[string]*Table
}

// New returns an empty schema for the given source name.
func New(source string) *Schema {
	return &Schema{Source: source, byName: make(map[string]*Table)}
}

// Add appends a column to the named table, creating the table on first sight.
// Rows for a table that appear after other tables extend the same table.
func (s *Schema) Add(table string, col Column) {
	t, ok := s.byName[table]
	if !ok {
		t = &Table{Name: table, Pos: col.Pos}
		s.byName[table] = t
		s.tables = append(s.tables, t)
	}
	t.Columns = append(t.Columns, col)
}

// Tables returns the tables in order of first appearance.
func (s *Schema) Tables() []*Table { return s.tables }

// Table looks up a table by exact name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Len returns the number of tables.
func (s *Schema) Len() int { return len(s.tables) }

// ReadFile reads a schema from a CSV file.
func ReadFile(path string) (*Schema, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from user configuration
	if err != nil {
		return nil, &MalformedInputError{Pos: Position{File: path}, Msg: "cannot open schema file", Err: err}
	}
	defer func() { _ = f.Close() }()
	return Read(f, path)
}

// Read parses a schema CSV. Header columns are located by name, so their order
// is free and extra columns are ignored. Cells are trimmed and blank rows are
// skipped. Column type tokens are not checked here.
func Read(r io.Reader, source string) (*Schema, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	s := New(source)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return s, nil
	}
	if err != nil {
		return nil, csvError(source, err)
	}

	idx, err := headerIndex(header)
	if err != nil {
		return nil, &MalformedInputError{Pos: Position{File: source, Line: 1}, Msg: err.Error()}
	}
	width := max(idx[HeaderTable], idx[HeaderColumn], idx[HeaderType]) + 1

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(source, err)
		}
		line, _ := cr.FieldPos(0)
		pos := Position{File: source, Line: line}

		if blank(rec) {
			continue
		}
		if len(rec) < width {
			return nil, &MalformedInputError{
				Pos: pos,
				Msg: fmt.Sprintf("expected at least %d fields, got %d", width, len(rec)),
			}
		}

		table := strings.TrimSpace(rec[idx[HeaderTable]])
		column := strings.TrimSpace(rec[idx[HeaderColumn]])
		typ := strings.TrimSpace(rec[idx[HeaderType]])
		if table == "" || column == "" {
			return nil, &MalformedInputError{Pos: pos, Msg: "table_name and column_name must not be empty"}
		}
		s.Add(table, Column{Name: column, Type: typ, Pos: pos})
	}

	return s, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}

	var missing []string
	for _, want := range []string{HeaderTable, HeaderColumn, HeaderType} {
		if _, ok := idx[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required header(s): %s (expected %s,%s,%s)",
			strings.Join(missing, ", "), HeaderTable, HeaderColumn, HeaderType)
	}
	return idx, nil
}

func csvError(source string, err error) error {
	pos := Position{File: source}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		pos.Line = pe.Line
		err = pe.Err
	}
	return &MalformedInputError{Pos: pos, Msg: "invalid CSV", Err: err}
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
