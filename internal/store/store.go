// Package store provides durable storage for fitted normalizer artifacts.
//
// Uses SQLite with WAL mode. The store never interprets artifact payloads;
// it keys them by name and carries enough metadata (backend, quantile
// resolution, fit id, timestamp) to pick the right artifact for a
// pipeline.
package store

import (
	"context"
	"database/sql"
	"errors"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound reports a lookup for an artifact name the store does not
// hold.
var ErrNotFound = errors.New("artifact not found")

// Record is one stored normalizer artifact.
type Record struct {
	ID          string
	Name        string
	Backend     string
	BreakPoints int
	CreatedAt   time.Time
	Payload     []byte
}

// Store is a SQLite-backed artifact registry.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies
// pragmas and the schema. Idempotent: safe to call on an existing store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent puts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Put stores an artifact, replacing any previous artifact under the same
// name. A zero CreatedAt is stamped with the current time.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.Name == "" {
		return fmt.Errorf("put artifact: name is required")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, name, backend, break_points, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			backend = excluded.backend,
			break_points = excluded.break_points,
			created_at = excluded.created_at,
			payload = excluded.payload
	`,
		rec.ID,
		rec.Name,
		rec.Backend,
		rec.BreakPoints,
		createdAt.Format(time.RFC3339Nano),
		rec.Payload,
	)
	if err != nil {
		return fmt.Errorf("put artifact %q: %w", rec.Name, err)
	}
	return nil
}

// Get returns the artifact stored under name.
func (s *Store) Get(ctx context.Context, name string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, backend, break_points, created_at, payload
		FROM artifacts
		WHERE name = ?
	`, name)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get artifact %q: %w", name, err)
	}
	return rec, nil
}

// List returns all stored artifacts ordered by name.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, backend, break_points, created_at, payload
		FROM artifacts
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Backend, &rec.BreakPoints, &createdAt, &rec.Payload); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}
