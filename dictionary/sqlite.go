package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS phrases (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	lhs     TEXT NOT NULL DEFAULT 'X',
	source  TEXT NOT NULL,
	target  TEXT NOT NULL,
	scores  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_phrases_source ON phrases(source);
`

// SQLiteStore keeps table entries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a store and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Import writes every entry of t in one transaction and returns the number written.
func (s *SQLiteStore) Import(ctx context.Context, t *Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO phrases (lhs, source, target, scores) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	n := 0
	insert := func(e *Entry) error {
		_, err := stmt.ExecContext(ctx, e.LHS, strings.Join(e.Source, " "), strings.Join(e.Target, " "), FormatScores(e.Scores))
		if err != nil {
			return fmt.Errorf("insert %q: %w", strings.Join(e.Source, " "), err)
		}
		n++
		return nil
	}
	for _, es := range t.Entries {
		for _, e := range es {
			if err := insert(e); err != nil {
				return 0, err
			}
		}
	}
	for _, e := range t.Rules {
		if err := insert(e); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// LoadInto reads every stored row into t.
func (s *SQLiteStore) LoadInto(ctx context.Context, t *Table) error {
	rows, err := s.db.QueryContext(ctx, `SELECT lhs, source, target, scores FROM phrases ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query phrases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lhs, source, target, scores string
		if err := rows.Scan(&lhs, &source, &target, &scores); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		e := &Entry{LHS: lhs, Source: strings.Fields(source), Target: strings.Fields(target)}
		for _, f := range strings.Fields(scores) {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("row %q: bad score %q: %w", source, f, err)
			}
			e.Scores = append(e.Scores, v)
		}
		if err := t.Add(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	t.Loaded = true
	return nil
}
