package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Entity is a validated table: every column mapped, exactly one primary key.
type Entity struct {
	Name       string   `json:"name" yaml:"name"`
	PrimaryKey string   `json:"primary_key" yaml:"primary_key"`
	Fields     []Field  `json:"fields" yaml:"fields"`
	Pos        Position `json:"-" yaml:"-"`
}

// Dependencies returns the distinct tables this entity references, excluding
// itself, in column order.
func (e *Entity) Dependencies() []string {
	var deps []string
	seen := make(map[string]bool)
	for _, f := range e.Fields {
		if f.IsForeignKey() && f.Ref != e.Name && !seen[f.Ref] {
			seen[f.Ref] = true
			deps = append(deps, f.Ref)
		}
	}
	return deps
}

// SelfReferencing reports whether the entity has a foreign key to itself.
func (e *Entity) SelfReferencing() bool {
	for _, f := range e.Fields {
		if f.IsForeignKey() && f.Ref == e.Name {
			return true
		}
	}
	return false
}

// Catalog is a validated schema. Entities keep CSV order.
type Catalog struct {
	Source   string
	Entities []*Entity
	byName   map[string]*Entity
}

// Entity looks up an entity by exact name.
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Validate maps every column type and checks the schema's structure. All
// problems are collected and returned together with errors.Join; foreign
// keys are checked last, once every table name is known.
func Validate(s *Schema) (*Catalog, error) {
	if s.Len() == 0 {
		return nil, &InvalidSchemaError{Pos: Position{File: s.Source}, Reason: "schema has no tables"}
	}

	c := &Catalog{Source: s.Source, byName: make(map[string]*Entity, s.Len())}
	var errs []error
	lowered := make(map[string]string, s.Len())

	for _, t := range s.Tables() {
		if !identPattern.MatchString(t.Name) {
			errs = append(errs, &InvalidSchemaError{Pos: t.Pos, Table: t.Name, Reason: "table name is not a valid identifier"})
		}
		key := strings.ToLower(t.Name)
		if other, dup := lowered[key]; dup {
			errs = append(errs, &InvalidSchemaError{
				Pos:    t.Pos,
				Table:  t.Name,
				Reason: fmt.Sprintf("table name collides with %q once lower-cased", other),
			})
		} else {
			lowered[key] = t.Name
		}

		e, tableErrs := validateTable(t)
		errs = append(errs, tableErrs...)
		c.Entities = append(c.Entities, e)
		c.byName[e.Name] = e
	}

	for _, e := range c.Entities {
		t, _ := s.Table(e.Name)
		for i, f := range e.Fields {
			if f.IsForeignKey() {
				if _, ok := c.byName[f.Ref]; !ok {
					errs = append(errs, &InvalidSchemaError{
						Pos:    t.Columns[i].Pos,
						Table:  e.Name,
						Column: f.Name,
						Reason: fmt.Sprintf("references unknown table %q", f.Ref),
					})
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// validateTable maps the table's columns. Unmappable columns are kept with a
// zero Kind so positions still line up with the source columns.
func validateTable(t *Table) (*Entity, []error) {
	e := &Entity{Name: t.Name, Pos: t.Pos, Fields: make([]Field, 0, len(t.Columns))}
	var errs []error
	seen := make(map[string]bool, len(t.Columns))
	var pks []string

	for _, col := range t.Columns {
		if !identPattern.MatchString(col.Name) {
			errs = append(errs, &InvalidSchemaError{Pos: col.Pos, Table: t.Name, Column: col.Name, Reason: "column name is not a valid identifier"})
		}
		if seen[col.Name] {
			errs = append(errs, &InvalidSchemaError{Pos: col.Pos, Table: t.Name, Column: col.Name, Reason: "duplicate column name"})
		}
		seen[col.Name] = true

		f, err := MapType(col.Name, col.Type)
		if err != nil {
			var ute *UnknownColumnTypeError
			if errors.As(err, &ute) {
				ute.Pos = col.Pos
				ute.Table = t.Name
			}
			errs = append(errs, err)
			f = Field{Name: col.Name}
		}
		if f.Kind == KindPrimaryKey {
			pks = append(pks, col.Name)
		}
		e.Fields = append(e.Fields, f)
	}

	switch len(pks) {
	case 0:
		errs = append(errs, &InvalidSchemaError{Pos: t.Pos, Table: t.Name, Reason: "table has no primary_key column"})
	case 1:
		e.PrimaryKey = pks[0]
	default:
		errs = append(errs, &InvalidSchemaError{
			Pos:    t.Pos,
			Table:  t.Name,
			Reason: fmt.Sprintf("table has %d primary_key columns (%s); exactly one is required", len(pks), strings.Join(pks, ", ")),
		})
	}
	return e, errs
}
