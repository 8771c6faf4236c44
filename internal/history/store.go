// Package history keeps a journal of conversions in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS conversions (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	pinyin      TEXT NOT NULL,
	output      TEXT NOT NULL,
	status      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS conversions_created_at ON conversions(created_at);`

const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

type Entry struct {
	ID        string
	CreatedAt time.Time
	Pinyin    string
	Output    string
	Status    string
	Duration  time.Duration
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history: database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, created_at, pinyin, output, status, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UnixMilli(), e.Pinyin, e.Output, e.Status, e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, pinyin, output, status, duration_ms FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			createdAt  int64
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Pinyin, &e.Output, &e.Status, &durationMS); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
