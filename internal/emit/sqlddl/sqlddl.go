// Package sqlddl emits SQLite CREATE TABLE statements for the schema. The
// backend is registered as "sql".
package sqlddl

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
)

// Name is the backend name used in configuration.
const Name = "sql"

//go:embed templates/*.tmpl
var templateFS embed.FS

func init() {
	emit.Register(Name, func(emit.Options) (emit.Emitter, error) {
		return New()
	})
}

// Emitter renders schema.sql.
type Emitter struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Emitter, error) {
	tmpl, err := emit.ParseTemplates(templateFS, template.FuncMap{
		"quote":      Quote,
		"columnType": columnType,
	}, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Emitter{tmpl: tmpl}, nil
}

// Name implements emit.Emitter.
func (e *Emitter) Name() string { return Name }

// Description implements emit.Emitter.
func (e *Emitter) Description() string {
	return "SQLite CREATE TABLE statements in dependency order"
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(m *emit.Model) ([]emit.Artifact, error) {
	return emit.Run(e.tmpl, []emit.RenderJob{
		{Template: "schema.sql.tmpl", Path: "schema.sql", Data: m},
	})
}

// Statements returns one CREATE TABLE statement per table, without the
// trailing semicolon, in model order.
func (e *Emitter) Statements(m *emit.Model) ([]string, error) {
	out := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		var buf bytes.Buffer
		if err := e.tmpl.ExecuteTemplate(&buf, "create_table", t); err != nil {
			return nil, fmt.Errorf("render table %s: %w", t.Name, err)
		}
		out = append(out, buf.String())
	}
	return out, nil
}

// Quote returns s as a double-quoted SQL identifier.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func columnType(f emit.FieldModel) (string, error) {
	switch f.Kind {
	case schema.KindPrimaryKey:
		return "INTEGER PRIMARY KEY AUTOINCREMENT", nil
	case schema.KindString:
		return "VARCHAR(255) NOT NULL", nil
	case schema.KindInt:
		return "INTEGER NOT NULL", nil
	case schema.KindDate:
		return "DATE NOT NULL", nil
	case schema.KindForeignKey:
		return fmt.Sprintf("INTEGER REFERENCES %s (%s) ON DELETE CASCADE", Quote(f.RefPath), Quote(f.RefPrimaryKey)), nil
	default:
		return "", fmt.Errorf("column %s: no SQL type for kind %s", f.Name, f.Kind)
	}
}
