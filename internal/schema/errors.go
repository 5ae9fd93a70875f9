package schema

import (
	"fmt"
	"strings"
)

// Position identifies a row in the schema source.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	switch {
	case p.File != "" && p.Line > 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	case p.File != "":
		return p.File
	case p.Line > 0:
		return fmt.Sprintf("line %d", p.Line)
	default:
		return ""
	}
}

func prefix(p Position) string {
	if s := p.String(); s != "" {
		return s + ": "
	}
	return ""
}

// MalformedInputError is returned when the CSV source is unreadable or lacks
// the required header columns.
type MalformedInputError struct {
	Pos Position
	Msg string
	Err error
}

func (e *MalformedInputError) Error() string {
	msg := prefix(e.Pos) + "malformed input: " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// UnknownColumnTypeError is returned when a column type token matches none
// of the recognized forms.
type UnknownColumnTypeError struct {
	Pos    Position
	Table  string
	Column string
	Token  string
	Hint   string
}

func (e *UnknownColumnTypeError) Error() string {
	var b strings.Builder
	b.WriteString(prefix(e.Pos))
	if e.Table != "" {
		fmt.Fprintf(&b, "table %q ", e.Table)
	}
	fmt.Fprintf(&b, "column %q: unknown column type %q", e.Column, e.Token)
	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// InvalidSchemaError reports a structural problem in an otherwise readable
// schema, such as a missing primary key or a dangling foreign key.
type InvalidSchemaError struct {
	Pos    Position
	Table  string
	Column string
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	var b strings.Builder
	b.WriteString(prefix(e.Pos))
	switch {
	case e.Table != "" && e.Column != "":
		fmt.Fprintf(&b, "table %q column %q: ", e.Table, e.Column)
	case e.Table != "":
		fmt.Fprintf(&b, "table %q: ", e.Table)
	}
	b.WriteString(e.Reason)
	return b.String()
}

// CyclicDependencyError is returned when foreign keys between two or more
// distinct tables form a cycle.
type CyclicDependencyError struct {
	// Tables is the sorted set of tables that could not be ordered.
	Tables []string
	// Cycle is one concrete cycle, first table repeated at the end.
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	msg := "cyclic foreign-key dependency among tables: " + strings.Join(e.Tables, ", ")
	if len(e.Cycle) > 0 {
		msg += " (" + strings.Join(e.Cycle, " -> ") + ")"
	}
	return msg
}
