// Package history records benchmark runs in a SQLite database so timings
// can be compared across invocations.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/alexshd/quadbench"
)

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// timeLayout is fixed width so recorded_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded integration.
type Run struct {
	ID         string         `json:"id" yaml:"id"`
	Batch      string         `json:"batch" yaml:"batch"` // shared by runs from one invocation
	RecordedAt time.Time      `json:"recorded_at" yaml:"recorded_at"`
	Command    string         `json:"command" yaml:"command"`
	Function   string         `json:"function" yaml:"function"`
	Rule       quadbench.Rule `json:"rule" yaml:"rule"`
	Mode       quadbench.Mode `json:"mode" yaml:"mode"`
	N          int64          `json:"n" yaml:"n"`
	Workers    int            `json:"workers" yaml:"workers"`
	Value      float64        `json:"value" yaml:"value"`
	AbsError   *float64       `json:"abs_error,omitempty" yaml:"abs_error,omitempty"` // nil when no exact value was known
	ElapsedMs  float64        `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			batch TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			command TEXT NOT NULL,
			function TEXT NOT NULL,
			rule TEXT NOT NULL,
			mode TEXT NOT NULL,
			n INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			value REAL NOT NULL,
			abs_error REAL,
			elapsed_ms REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_function ON runs(function)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_batch ON runs(batch)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewBatch returns an ID for grouping the runs of one invocation.
func NewBatch() string {
	return uuid.NewString()
}

// Record inserts runs in one transaction. Runs without an ID or timestamp
// get a fresh UUID and the current time; the slice is updated in place.
func (s *Store) Record(ctx context.Context, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO runs
		(id, batch, recorded_at, command, function, rule, mode, n, workers, value, abs_error, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range runs {
		r := &runs[i]
		if !r.Rule.Valid() {
			return fmt.Errorf("run %d: %w: %v", i, quadbench.ErrInvalidRule, r.Rule)
		}
		if _, err := r.Mode.MarshalText(); err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Batch, r.RecordedAt.UTC().Format(timeLayout),
			r.Command, r.Function, r.Rule.String(), r.Mode.String(),
			r.N, r.Workers, r.Value, r.AbsError, r.ElapsedMs,
		); err != nil {
			return fmt.Errorf("inserting run %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing runs: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A non-empty function
// restricts the result to that integrand.
func (s *Store) Recent(ctx context.Context, limit int, function string) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, batch, recorded_at, command, function, rule, mode, n, workers, value, abs_error, elapsed_ms
		FROM runs`
	args := []any{}
	if function != "" {
		query += ` WHERE function = ?`
		args = append(args, function)
	}
	query += ` ORDER BY recorded_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                    Run
			recordedAt, rule, md string
			absErr               sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Batch, &recordedAt, &r.Command, &r.Function,
			&rule, &md, &r.N, &r.Workers, &r.Value, &absErr, &r.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if absErr.Valid {
			r.AbsError = &absErr.Float64
		}
		if r.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("run %s: parsing time: %w", r.ID, err)
		}
		if r.Rule, err = quadbench.ParseRule(rule); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		if err := r.Mode.UnmarshalText([]byte(md)); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
