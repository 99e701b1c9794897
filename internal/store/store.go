// Package store autosaves documents to a SQLite database, keyed by name.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/importer"
)

// ErrNotFound is returned when no document is saved under a name.
var ErrNotFound = errors.New("store: document not found")

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	html       TEXT NOT NULL,
	blocks     INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Entry describes a saved document.
type Entry struct {
	Name      string
	Blocks    int
	UpdatedAt time.Time
}

// Store is a SQLite backed document store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the database at path. ":memory:" keeps everything in
// memory for the lifetime of the store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: would see its own empty database
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.ensureSchemaExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchemaExists() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='documents'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec(schema)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores doc under name, replacing any previous version. Documents are
// kept as editor HTML without break widgets.
func (s *Store) Save(ctx context.Context, name string, doc *document.Document) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents (name, html, blocks, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET html = excluded.html, blocks = excluded.blocks, updated_at = excluded.updated_at`,
		name, doc.HTML(nil), doc.BlockCount(), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load restores the document saved under name.
func (s *Store) Load(ctx context.Context, name string) (*document.Document, error) {
	var html string
	err := s.db.QueryRowContext(ctx, "SELECT html FROM documents WHERE name = ?", name).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	doc, err := importer.Load(strings.NewReader(html), importer.FormatHTML)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return doc, nil
}

// List returns every saved document, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, blocks, updated_at FROM documents ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.Name, &e.Blocks, &ms); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		e.UpdatedAt = time.UnixMilli(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the document saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}
