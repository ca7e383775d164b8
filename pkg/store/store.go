// Package store keeps the rows of remote sections in SQLite. Fetching them is
// the "download" the list performs on first expansion.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/vanderheijden86/sectionview/pkg/model"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// ErrSectionNotFound is returned when a section was never written to the store.
var ErrSectionNotFound = errors.New("section not found in row store")

const schema = `
CREATE TABLE IF NOT EXISTS sections (
	id         TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rows (
	section_id TEXT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	id         TEXT NOT NULL,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	tags       BLOB,
	updated_at TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (section_id, position)
);`

// RowStore is a SQLite-backed source of section rows. It is safe for
// concurrent use.
type RowStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the row store at path.
func Open(path string) (*RowStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open row store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &RowStore{db: db, path: path}, nil
}

// Path returns the database file the store was opened on.
func (s *RowStore) Path() string { return s.path }

// Close releases the database handle.
func (s *RowStore) Close() error { return s.db.Close() }

// FetchRows returns the rows stored for a section in order. It honors ctx
// cancellation so an abandoned download stops early.
func (s *RowStore) FetchRows(ctx context.Context, sectionID string) ([]model.Row, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sections WHERE id = ?`, sectionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup section %s: %w", sectionID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, tags, updated_at FROM rows WHERE section_id = ? ORDER BY position`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []model.Row{}
	for rows.Next() {
		var (
			r       model.Row
			tags    []byte
			updated string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Body, &tags, &updated); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &r.Tags); err != nil {
				return nil, fmt.Errorf("decode tags of %s/%s: %w", sectionID, r.ID, err)
			}
		}
		if updated != "" {
			if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
				return nil, fmt.Errorf("decode updated_at of %s/%s: %w", sectionID, r.ID, err)
			}
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ReplaceRows swaps the stored rows of a section for rows in one transaction.
func (s *RowStore) ReplaceRows(ctx context.Context, sectionID string, rows []model.Row) (retErr error) {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return fmt.Errorf("row %d of %s: %w", i, sectionID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sections (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`, sectionID, now); err != nil {
		return fmt.Errorf("upsert section: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rows WHERE section_id = ?`, sectionID); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (section_id, position, id, title, body, tags, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rows {
		var tags []byte
		if len(r.Tags) > 0 {
			if tags, err = json.Marshal(r.Tags); err != nil {
				return fmt.Errorf("encode tags: %w", err)
			}
		}
		var updated string
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, sectionID, i, r.ID, r.Title, r.Body, tags, updated); err != nil {
			return fmt.Errorf("insert row %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteSection forgets a section and its rows.
func (s *RowStore) DeleteSection(ctx context.Context, sectionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rows WHERE section_id = ?`, sectionID); err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, sectionID); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// SectionSummary describes one stored section.
type SectionSummary struct {
	ID        string
	Rows      int
	UpdatedAt time.Time
}

// Sections lists every stored section ordered by ID.
func (s *RowStore) Sections(ctx context.Context) ([]SectionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.updated_at, COUNT(r.id)
		FROM sections s LEFT JOIN rows r ON r.section_id = s.id
		GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("select sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SectionSummary
	for rows.Next() {
		var (
			sum     SectionSummary
			updated string
		)
		if err := rows.Scan(&sum.ID, &updated, &sum.Rows); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}
