// Package emit holds the backend-neutral model every emitter renders from,
// the naming rules they share, and the registry backends add themselves to.
package emit

import (
	"fmt"
	"unicode/utf8"

	"github.com/leapstack-labs/leapgen/internal/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Model is a validated schema in dependency order, ready for rendering.
type Model struct {
	Source string
	Tables []TableModel
}

// TableModel is one table with its naming resolved.
type TableModel struct {
	// Name is the table name exactly as written in the CSV.
	Name string
	// Symbol is the class or type name: Name capitalized.
	Symbol string
	// Path is the URL path segment and storage table name: Name lower-cased.
	Path       string
	PrimaryKey string
	Fields     []FieldModel
	// Deps lists the referenced tables other than this one.
	Deps []string
}

// FieldModel is one column with its foreign-key target resolved.
type FieldModel struct {
	Name string
	Kind schema.Kind

	Ref           string
	RefSymbol     string
	RefPath       string
	RefPrimaryKey string
	// SelfRef is set when the foreign key targets its own table.
	SelfRef bool
}

// IsPrimaryKey reports whether the field is the table's primary key.
func (f FieldModel) IsPrimaryKey() bool { return f.Kind == schema.KindPrimaryKey }

// IsString reports whether the field is a bounded string.
func (f FieldModel) IsString() bool { return f.Kind == schema.KindString }

// IsInt reports whether the field is an integer.
func (f FieldModel) IsInt() bool { return f.Kind == schema.KindInt }

// IsDate reports whether the field is a date.
func (f FieldModel) IsDate() bool { return f.Kind == schema.KindDate }

// IsForeignKey reports whether the field references a table.
func (f FieldModel) IsForeignKey() bool { return f.Kind == schema.KindForeignKey }

// DataFields returns every field except the primary key, in column order.
func (t TableModel) DataFields() []FieldModel {
	out := make([]FieldModel, 0, len(t.Fields))
	for _, f := range t.Fields {
		if !f.IsPrimaryKey() {
			out = append(out, f)
		}
	}
	return out
}

// FirstString returns the first string field, if any.
func (t TableModel) FirstString() (FieldModel, bool) {
	for _, f := range t.Fields {
		if f.IsString() {
			return f, true
		}
	}
	return FieldModel{}, false
}

// HasString reports whether the table has at least one string field.
func (t TableModel) HasString() bool {
	_, ok := t.FirstString()
	return ok
}

// Table looks up a table by its CSV name.
func (m *Model) Table(name string) (TableModel, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableModel{}, false
}

// Symbol returns the symbol name for a table: first character upper-case,
// the rest lower-case, so "order_line" becomes "Order_line".
func Symbol(name string) string {
	if name == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(name)
	return cases.Upper(language.Und).String(name[:size]) + cases.Lower(language.Und).String(name[size:])
}

// Path returns the URL path segment for a table.
func Path(name string) string {
	return cases.Lower(language.Und).String(name)
}

// BuildModel arranges a catalog's entities in the given order and resolves
// names. order must name every entity exactly once.
func BuildModel(c *schema.Catalog, order []string) (*Model, error) {
	if len(order) != len(c.Entities) {
		return nil, fmt.Errorf("order has %d tables, schema has %d", len(order), len(c.Entities))
	}

	m := &Model{Source: c.Source, Tables: make([]TableModel, 0, len(order))}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		e, ok := c.Entity(name)
		if !ok {
			return nil, fmt.Errorf("order names unknown table %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("order names table %q twice", name)
		}
		seen[name] = true

		t := TableModel{
			Name:       e.Name,
			Symbol:     Symbol(e.Name),
			Path:       Path(e.Name),
			PrimaryKey: e.PrimaryKey,
			Deps:       e.Dependencies(),
			Fields:     make([]FieldModel, 0, len(e.Fields)),
		}
		for _, f := range e.Fields {
			fm := FieldModel{Name: f.Name, Kind: f.Kind}
			if f.IsForeignKey() {
				ref, ok := c.Entity(f.Ref)
				if !ok {
					return nil, fmt.Errorf("table %q column %q references unknown table %q", e.Name, f.Name, f.Ref)
				}
				fm.Ref = ref.Name
				fm.RefSymbol = Symbol(ref.Name)
				fm.RefPath = Path(ref.Name)
				fm.RefPrimaryKey = ref.PrimaryKey
				fm.SelfRef = ref.Name == e.Name
			}
			t.Fields = append(t.Fields, fm)
		}
		m.Tables = append(m.Tables, t)
	}
	return m, nil
}
