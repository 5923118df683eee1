// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists ingested paper records in SQLite and serves
// them back as a snapshot source, with full-text title search.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

// ErrNotFound reports an unknown paper id.
var ErrNotFound = errors.New("paper not found")

// Store manages the catalog database.
type Store struct {
	db     *sql.DB
	path   string
	fts    bool
	logger zerolog.Logger
}

// Open opens or creates the catalog at path and ensures the schema exists.
// Full-text search uses FTS5 when the SQLite build provides it and falls
// back to substring matching otherwise.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger.With().Str("component", "catalog").Logger()}
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

// Name identifies the catalog as a snapshot source.
func (s *Store) Name() string { return "catalog:" + s.path }

// FullText reports whether FTS5 search is available.
func (s *Store) FullText() bool { return s.fts }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '',
			published TEXT NOT NULL DEFAULT '',
			ingested_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE papers_fts USING fts5(title, summary, content=papers, content_rowid=seq)`,
		`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
			INSERT INTO papers_fts(rowid, title, summary) VALUES (new.seq, new.title, new.summary);
		END`,
		`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, summary) VALUES('delete', old.seq, old.title, old.summary);
		END`,
		`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
			INSERT INTO papers_fts(papers_fts, rowid, title, summary) VALUES('delete', old.seq, old.title, old.summary);
			INSERT INTO papers_fts(rowid, title, summary) VALUES (new.seq, new.title, new.summary);
		END`,
	}
	if _, err := s.db.Exec(ftsStatements[0]); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			s.logger.Debug().Err(err).Msg("fts5 unavailable, using substring search")
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range ftsStatements[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Upsert inserts new records and updates existing ones by id in a single
// transaction. Existing rows keep their original position. Records with
// a blank id are skipped.
func (s *Store) Upsert(ctx context.Context, records []types.RawRecord) (inserted, updated int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := tx.PrepareContext(ctx, `SELECT 1 FROM papers WHERE id = ?`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx, `INSERT INTO papers (id, title, summary, authors, published, ingested_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			authors = excluded.authors,
			published = excluded.published,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		var one int
		err := exists.QueryRowContext(ctx, id).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			inserted++
		case err != nil:
			return 0, 0, fmt.Errorf("looking up %s: %w", id, err)
		default:
			updated++
		}
		if _, err := upsert.ExecContext(ctx, id, r.Title, r.Summary, r.Authors, r.Published, now, now); err != nil {
			return 0, 0, fmt.Errorf("upserting %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing: %w", err)
	}
	s.logger.Info().Int("inserted", inserted).Int("updated", updated).Msg("catalog updated")
	return inserted, updated, nil
}

// Records returns every stored record in insertion order.
func (s *Store) Records(ctx context.Context) ([]types.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, summary, published, authors FROM papers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.RawRecord, error) {
	var r types.RawRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, summary, published, authors FROM papers WHERE id = ?`,
		strings.TrimSpace(id),
	).Scan(&r.ID, &r.Title, &r.Summary, &r.Published, &r.Authors)
	if errors.Is(err, sql.ErrNoRows) {
		return types.RawRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.RawRecord{}, fmt.Errorf("reading paper %s: %w", id, err)
	}
	return r, nil
}

// Count returns the number of stored papers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]types.RawRecord, error) {
	var records []types.RawRecord
	for rows.Next() {
		var r types.RawRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Summary, &r.Published, &r.Authors); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
