package emit

import (
	"strconv"

	"github.com/leapstack-labs/leapgen/internal/schema"
)

// SentinelInt is the value synthesized for every integer column.
const SentinelInt = 25

// SampleKind says how a sample value is produced.
type SampleKind int

const (
	// SampleString is a fixed string literal.
	SampleString SampleKind = iota + 1
	// SampleInt is SentinelInt.
	SampleInt
	// SampleToday is the current date in ISO form.
	SampleToday
	// SampleCreatedID is the id recorded when the referenced table's row was created.
	SampleCreatedID
	// SampleNull is an absent value, used for self references.
	SampleNull
)

// Sample is the synthesized value for one non-primary-key column.
type Sample struct {
	Field string
	Kind  SampleKind
	// Literal is the string value for SampleString and the decimal value for SampleInt.
	Literal string
	// Ref is the referenced table for SampleCreatedID.
	Ref string
}

// Is reports whether the sample has the given kind; templates use it for dispatch.
func (s Sample) Is(kind string) bool {
	switch kind {
	case "string":
		return s.Kind == SampleString
	case "int":
		return s.Kind == SampleInt
	case "today":
		return s.Kind == SampleToday
	case "created_id":
		return s.Kind == SampleCreatedID
	case "null":
		return s.Kind == SampleNull
	}
	return false
}

// SampleText returns the string synthesized for a string column.
func SampleText(table, column string, updated bool) string {
	if updated {
		return "updated_" + table + "_" + column
	}
	return "test_" + table + "_" + column
}

// Payload synthesizes a creation payload for a table: strings become
// test_<table>_<column>, integers SentinelInt, dates today, and foreign keys
// the created id of the referenced table. With updated set, the first string
// column gets updated_<table>_<column> instead.
func Payload(t TableModel, updated bool) []Sample {
	first, _ := t.FirstString()
	out := make([]Sample, 0, len(t.Fields))
	for _, f := range t.DataFields() {
		s := Sample{Field: f.Name}
		switch f.Kind {
		case schema.KindString:
			s.Kind = SampleString
			s.Literal = SampleText(t.Name, f.Name, updated && f.Name == first.Name)
		case schema.KindInt:
			s.Kind = SampleInt
			s.Literal = strconv.Itoa(SentinelInt)
		case schema.KindDate:
			s.Kind = SampleToday
		case schema.KindForeignKey:
			if f.SelfRef {
				s.Kind = SampleNull
			} else {
				s.Kind = SampleCreatedID
				s.Ref = f.Ref
			}
		default:
			continue
		}
		out = append(out, s)
	}
	return out
}
