package schema

import (
	"fmt"
	"strings"
)

// Kind is the semantic kind of a column.
type Kind int

// Column kinds. Every emitter renders each of these in its own syntax.
const (
	KindPrimaryKey Kind = iota + 1 // auto-increment integer primary key
	KindString                     // bounded string
	KindInt                        // integer
	KindDate                       // calendar date
	KindForeignKey                 // nullable reference to another table's primary key
)

// Column type tokens accepted in the CSV.
const (
	TokenPrimaryKey  = "primary_key"
	TokenString      = "string"
	TokenInt         = "int"
	TokenDate        = "date"
	ForeignKeyPrefix = "foreign-"
)

var kindNames = map[Kind]string{
	KindPrimaryKey: "primary_key",
	KindString:     "string",
	KindInt:        "int",
	KindDate:       "date",
	KindForeignKey: "foreign_key",
}

var tokenKinds = map[string]Kind{
	TokenPrimaryKey: KindPrimaryKey,
	TokenString:     KindString,
	TokenInt:        KindInt,
	TokenDate:       KindDate,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field is a column with its type token resolved.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
	// Ref is the referenced table for KindForeignKey.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// IsForeignKey reports whether the field references another table.
func (f Field) IsForeignKey() bool { return f.Kind == KindForeignKey }

// MapType resolves a column type token. Exact tokens are primary_key, string,
// int and date; foreign-<table> references <table>, taking everything after
// the first '-' as the table name. Anything else is an
// *UnknownColumnTypeError, which carries a hint for near misses.
func MapType(column, token string) (Field, error) {
	if kind, ok := tokenKinds[token]; ok {
		return Field{Name: column, Kind: kind}, nil
	}
	if ref, ok := strings.CutPrefix(token, ForeignKeyPrefix); ok && ref != "" {
		return Field{Name: column, Kind: KindForeignKey, Ref: ref}, nil
	}
	return Field{}, &UnknownColumnTypeError{Column: column, Token: token, Hint: typeHint(token)}
}

func typeHint(token string) string {
	lower := strings.ToLower(token)
	switch {
	case token == "":
		return "column_type is empty; expected one of primary_key, string, int, date or foreign-<table>"
	case lower == "foreign_key" || lower == "foreign":
		return "foreign keys are written as foreign-<table>, naming the referenced table"
	case token == ForeignKeyPrefix:
		return "foreign-<table> needs the referenced table name after the dash"
	case tokenKinds[lower] != 0:
		return fmt.Sprintf("column types are lower-case; did you mean %q?", lower)
	case strings.HasPrefix(lower, ForeignKeyPrefix):
		return fmt.Sprintf("the prefix is lower-case; did you mean %q?", ForeignKeyPrefix+token[len(ForeignKeyPrefix):])
	default:
		return "expected one of primary_key, string, int, date or foreign-<table>"
	}
}
