// Package history keeps every execution batch in a local sqlite database so
// past runs can be listed after their text logs have been overwritten.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/jorge-barreto/spdocs/internal/runlog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is an open history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("history: creating directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("history: migrating: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished run and its entries in one transaction.
func (s *Store) Record(ctx context.Context, l *runlog.Log) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, engine, started_at, finished_at) VALUES (?, ?, ?, ?)`,
		l.RunID, l.Engine, l.Started.UnixNano(), l.Finished.UnixNano(),
	); err != nil {
		return fmt.Errorf("history: inserting run: %w", err)
	}
	for i, e := range l.Entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (run_id, position, program, success, error, elapsed_ns) VALUES (?, ?, ?, ?, ?, ?)`,
			l.RunID, i, e.Program, e.Success, e.Error, int64(e.Elapsed),
		); err != nil {
			return fmt.Errorf("history: inserting entry %s: %w", e.Program, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to n runs, newest first, with their entries.
func (s *Store) Recent(ctx context.Context, n int) ([]*runlog.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, engine, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	var runs []*runlog.Log
	for rows.Next() {
		var (
			l                 runlog.Log
			started, finished int64
		)
		if err := rows.Scan(&l.RunID, &l.Engine, &started, &finished); err != nil {
			rows.Close()
			return nil, fmt.Errorf("history: %w", err)
		}
		l.Started = time.Unix(0, started)
		l.Finished = time.Unix(0, finished)
		runs = append(runs, &l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	for _, l := range runs {
		if err := s.loadEntries(ctx, l); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *Store) loadEntries(ctx context.Context, l *runlog.Log) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT program, success, error, elapsed_ns FROM entries WHERE run_id = ? ORDER BY position`, l.RunID)
	if err != nil {
		return fmt.Errorf("history: loading entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e       runlog.Entry
			elapsed int64
		)
		if err := rows.Scan(&e.Program, &e.Success, &e.Error, &elapsed); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		e.Elapsed = time.Duration(elapsed)
		l.Add(e)
	}
	return rows.Err()
}

// ProgramFailures returns how many recorded runs failed each program.
func (s *Store) ProgramFailures(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT program, COUNT(*) FROM entries WHERE success = 0 GROUP BY program`)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}
