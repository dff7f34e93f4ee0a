// Package storage persists the relocation entities in SQLite.
//
// Every mutating operation is its own atomic unit: single-statement
// writes ride SQLite's per-statement atomicity, merged updates run in an
// explicit transaction. Ownership cascades (profile -> phases, tasks,
// expenses, categories; phase -> tasks, expenses) are enforced by the
// schema's foreign keys, enabled on every connection.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"relocationos/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable; used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// querier lets row helpers run against both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const timeLayout = "2006-01-02 15:04:05"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Null-column bridges. A nil argument is written as NULL.

func nullDate(d *core.Date) any {
	if d == nil || d.IsEmpty() {
		return nil
	}
	return d.String()
}

func dateVal(ns sql.NullString) *core.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := core.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullMoney(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}

func moneyVal(ni sql.NullInt64) *core.Money {
	if !ni.Valid {
		return nil
	}
	return &core.Money{Cents: ni.Int64}
}

func nullRate(r *core.Rate) any {
	if r == nil {
		return nil
	}
	return int64(*r)
}

func rateVal(ni sql.NullInt64) *core.Rate {
	if !ni.Valid {
		return nil
	}
	r := core.Rate(ni.Int64)
	return &r
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idVal(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
