// Package emittest builds emitter models from inline CSV for backend tests.
package emittest

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/schema"
	"github.com/stretchr/testify/require"
)

// BlogCSV is the two-table schema used across backend tests.
const BlogCSV = `table_name,column_name,column_type
user,id,primary_key
user,username,string
user,age,int
posts,id,primary_key
posts,user,foreign-user
posts,content,string
`

// FullCSV exercises every column kind, a self reference and a table
// without string columns.
const FullCSV = `table_name,column_name,column_type
Employee,id,primary_key
Employee,name,string
Employee,hired,date
Employee,manager,foreign-Employee
Employee,department,foreign-department
department,dept_id,primary_key
department,title,string
department,budget,int
badge,id,primary_key
badge,owner,foreign-Employee
badge,level,int
`

// Model parses, validates and orders input, failing the test on any error.
func Model(t testing.TB, input string) *emit.Model {
	t.Helper()
	s, err := schema.Read(strings.NewReader(input), "model.csv")
	require.NoError(t, err)
	c, err := schema.Validate(s)
	require.NoError(t, err)
	order, err := schema.Resolve(c)
	require.NoError(t, err)
	m, err := emit.BuildModel(c, order)
	require.NoError(t, err)
	return m
}

// Files runs an emitter and indexes its artifacts by path.
func Files(t testing.TB, e emit.Emitter, m *emit.Model) map[string]string {
	t.Helper()
	artifacts, err := e.Emit(m)
	require.NoError(t, err)
	files := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		_, dup := files[a.Path]
		require.False(t, dup, "duplicate artifact %s", a.Path)
		files[a.Path] = string(a.Content)
	}
	return files
}

// Paths returns artifact paths in emission order.
func Paths(artifacts []emit.Artifact) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a.Path)
	}
	return out
}
