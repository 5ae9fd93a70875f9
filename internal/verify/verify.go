// Package verify checks that a schema's DDL loads into SQLite and that one
// synthesized row per table can be inserted in dependency order with foreign
// keys enforced.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/leapstack-labs/leapgen/internal/emit/sqlddl"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// OpenMemory opens a private in-memory SQLite database with foreign keys
// enforced. The pool holds a single connection so every statement sees the
// same database.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// TableResult is the row inserted into one table.
type TableResult struct {
	Table   string `json:"table"`
	ID      int64  `json:"id"`
	Columns int    `json:"columns"`
}

// Report summarizes a verification run.
type Report struct {
	Statements int           `json:"statements"`
	Tables     []TableResult `json:"tables"`
}

// Verifier runs the DDL and inserts against DB.
type Verifier struct {
	DB     *sql.DB
	Logger *slog.Logger
	// Today is the value used for date columns.
	Today time.Time
}

// Run verifies m against db using today for date columns.
func Run(ctx context.Context, db *sql.DB, m *emit.Model, today time.Time) (*Report, error) {
	v := &Verifier{DB: db, Today: today}
	return v.Run(ctx, m)
}

// Run creates every table and inserts one row per table inside a single
// transaction, which is committed only if everything succeeded.
func (v *Verifier) Run(ctx context.Context, m *emit.Model) (*Report, error) {
	if v.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	ddl, err := sqlddl.New()
	if err != nil {
		return nil, err
	}
	stmts, err := ddl.Statements(m)
	if err != nil {
		return nil, err
	}

	tx, err := v.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	report := &Report{Statements: len(stmts)}
	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create table %s: %w", m.Tables[i].Name, err)
		}
	}
	v.debug("tables created", "count", len(stmts))

	created := make(map[string]int64, len(m.Tables))
	for _, t := range m.Tables {
		query, args, err := Insert(t, created, v.Today)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", t.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert into %s: read id: %w", t.Name, err)
		}
		created[t.Name] = id
		report.Tables = append(report.Tables, TableResult{Table: t.Name, ID: id, Columns: len(args)})
		v.debug("row inserted", "table", t.Name, "id", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return report, nil
}

// Insert builds the INSERT statement for one table's synthesized payload.
// created maps table names to the ids already inserted.
func Insert(t emit.TableModel, created map[string]int64, today time.Time) (string, []any, error) {
	samples := emit.Payload(t, false)
	if len(samples) == 0 {
		return "INSERT INTO " + sqlddl.Quote(t.Path) + " DEFAULT VALUES", nil, nil
	}

	cols := make([]string, 0, len(samples))
	marks := make([]string, 0, len(samples))
	args := make([]any, 0, len(samples))
	for _, s := range samples {
		var arg any
		switch s.Kind {
		case emit.SampleString:
			arg = s.Literal
		case emit.SampleInt:
			arg = int64(emit.SentinelInt)
		case emit.SampleToday:
			arg = today.Format(time.DateOnly)
		case emit.SampleCreatedID:
			id, ok := created[s.Ref]
			if !ok {
				return "", nil, fmt.Errorf("table %s column %s: no row in %s yet", t.Name, s.Field, s.Ref)
			}
			arg = id
		case emit.SampleNull:
			arg = nil
		default:
			return "", nil, fmt.Errorf("table %s column %s: unknown sample kind %d", t.Name, s.Field, s.Kind)
		}
		cols = append(cols, sqlddl.Quote(s.Field))
		marks = append(marks, "?")
		args = append(args, arg)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqlddl.Quote(t.Path), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, args, nil
}

func (v *Verifier) debug(msg string, args ...any) {
	if v.Logger != nil {
		v.Logger.Debug(msg, args...)
	}
}
