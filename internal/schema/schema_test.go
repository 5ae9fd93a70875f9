package schema

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogCSV = `table_name,column_name,column_type
user,id,primary_key
user,username,string
user,age,int
posts,id,primary_key
posts,user,foreign-user
posts,content,string
`

func columnNames(t *Table) []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

func tableNames(s *Schema) []string {
	names := make([]string, 0, s.Len())
	for _, t := range s.Tables() {
		names = append(names, t.Name)
	}
	return names
}

func TestRead(t *testing.T) {
	s, err := Read(strings.NewReader(blogCSV), "model.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"user", "posts"}, tableNames(s))

	user, ok := s.Table("user")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "username", "age"}, columnNames(user))
	assert.Equal(t, Position{File: "model.csv", Line: 2}, user.Pos)

	posts, ok := s.Table("posts")
	require.True(t, ok)
	assert.Equal(t, "foreign-user", posts.Columns[1].Type)
	assert.Equal(t, 6, posts.Columns[1].Pos.Line)
}

func TestRead_Layouts(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTables []string
		wantCols   map[string][]string
	}{
		{
			name:       "header order and extra columns",
			input:      "column_type,note,table_name,column_name\nprimary_key,x,a,id\nstring,,a,name\n",
			wantTables: []string{"a"},
			wantCols:   map[string][]string{"a": {"id", "name"}},
		},
		{
			name:       "header case and padding",
			input:      " Table_Name , COLUMN_NAME,column_type \na,id,primary_key\n",
			wantTables: []string{"a"},
			wantCols:   map[string][]string{"a": {"id"}},
		},
		{
			name:       "byte order mark",
			input:      "\ufefftable_name,column_name,column_type\na,id,primary_key\n",
			wantTables: []string{"a"},
			wantCols:   map[string][]string{"a": {"id"}},
		},
		{
			name:       "blank rows and whitespace",
			input:      "table_name,column_name,column_type\n\na ,  id , primary_key \n , , \na,name,string\n",
			wantTables: []string{"a"},
			wantCols:   map[string][]string{"a": {"id", "name"}},
		},
		{
			name:       "later rows extend an earlier table",
			input:      "table_name,column_name,column_type\na,id,primary_key\nb,id,primary_key\na,name,string\n",
			wantTables: []string{"a", "b"},
			wantCols:   map[string][]string{"a": {"id", "name"}, "b": {"id"}},
		},
		{
			name:       "header only",
			input:      "table_name,column_name,column_type\n",
			wantTables: []string{},
		},
		{
			name:       "empty input",
			input:      "",
			wantTables: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(strings.NewReader(tt.input), "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantTables, tableNames(s))
			for table, cols := range tt.wantCols {
				tbl, ok := s.Table(table)
				require.True(t, ok, "table %q", table)
				assert.Equal(t, cols, columnNames(tbl))
			}
		})
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "missing column_type header",
			input:    "table_name,column_name\na,id\n",
			wantLine: 1,
			wantMsg:  "missing required header(s): column_type",
		},
		{
			name:     "wrong headers",
			input:    "table,column,type\na,id,primary_key\n",
			wantLine: 1,
			wantMsg:  "table_name, column_name, column_type",
		},
		{
			name:     "short row",
			input:    "table_name,column_name,column_type\na,id,primary_key\na,name\n",
			wantLine: 3,
			wantMsg:  "expected at least 3 fields, got 2",
		},
		{
			name:     "empty table name",
			input:    "table_name,column_name,column_type\n,id,primary_key\n",
			wantLine: 2,
			wantMsg:  "must not be empty",
		},
		{
			name:     "bare quote",
			input:    "table_name,column_name,column_type\na,i\"d,primary_key\n",
			wantLine: 2,
			wantMsg:  "invalid CSV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), "model.csv")
			require.Error(t, err)

			var mie *MalformedInputError
			require.ErrorAs(t, err, &mie)
			assert.Equal(t, tt.wantLine, mie.Pos.Line)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.True(t, strings.HasPrefix(err.Error(), "model.csv:"), err.Error())
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.csv")
	require.NoError(t, os.WriteFile(path, []byte(blogCSV), 0o600))

	s, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, 2, s.Len())

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	var mie *MalformedInputError
	require.ErrorAs(t, err, &mie)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "a.csv:3", Position{File: "a.csv", Line: 3}.String())
	assert.Equal(t, "a.csv", Position{File: "a.csv"}.String())
	assert.Equal(t, "line 3", Position{Line: 3}.String())
	assert.Equal(t, "", Position{}.String())
}
