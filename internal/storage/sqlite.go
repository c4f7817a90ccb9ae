package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `p.id, p.doi, p.title, p.venue,
	p.pub_year, p.pub_month, p.pub_day,
	p.source_type, p.source_id, p.authors_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			doi TEXT,
			title TEXT NOT NULL,
			venue TEXT,
			pub_year INTEGER NOT NULL,
			pub_month INTEGER,
			pub_day INTEGER,
			source_type TEXT NOT NULL,
			source_id TEXT,
			authors_json TEXT NOT NULL
		);

		-- Which author keys appear on which paper
		CREATE TABLE IF NOT EXISTS paper_authors (
			paper_id TEXT NOT NULL,
			author_key TEXT NOT NULL,
			PRIMARY KEY (paper_id, author_key)
		);
		CREATE INDEX IF NOT EXISTS idx_paper_authors_key ON paper_authors(author_key);

		CREATE TABLE IF NOT EXISTS authors (
			key TEXT PRIMARY KEY,
			author_id TEXT,
			name TEXT NOT NULL
		);

		-- Full-text search over cached author names (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS authors_fts USING fts5(
			key UNINDEXED,
			name
		);

		-- Computed layouts keyed by the layout cache key
		CREATE TABLE IF NOT EXISTS layouts (
			key TEXT PRIMARY KEY,
			positions_json TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SavePapers upserts papers and their authors in one transaction and
// returns how many papers were written.
func (d *DB) SavePapers(ctx context.Context, refs []reference.Reference) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	paperStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO papers (
			id, doi, title, venue,
			pub_year, pub_month, pub_day,
			source_type, source_id, authors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO paper_authors (paper_id, author_key) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing author link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, ref := range refs {
		authorsJSON, err := json.Marshal(ref.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", ref.ID, err)
		}

		_, err = paperStmt.ExecContext(ctx,
			ref.ID, nullableStringValue(ref.DOI), ref.Title, nullableStringValue(ref.Venue),
			ref.Published.Year, ref.Published.Month, ref.Published.Day,
			ref.Source.Type, nullableStringValue(ref.Source.ID), string(authorsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting paper %s: %w", ref.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM paper_authors WHERE paper_id = ?`, ref.ID); err != nil {
			return 0, fmt.Errorf("clearing authors of %s: %w", ref.ID, err)
		}
		for _, a := range ref.Authors {
			if _, err := linkStmt.ExecContext(ctx, ref.ID, a.Key()); err != nil {
				return 0, fmt.Errorf("linking %s to %s: %w", a.Key(), ref.ID, err)
			}
			if err := saveAuthor(ctx, tx, a); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing papers: %w", err)
	}
	return len(refs), nil
}

func saveAuthor(ctx context.Context, tx *sql.Tx, a reference.Author) error {
	res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO authors (key, author_id, name) VALUES (?, ?, ?)`,
		a.Key(), nullableStringValue(a.ID), a.Name)
	if err != nil {
		return fmt.Errorf("inserting author %s: %w", a.Key(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO authors_fts (key, name) VALUES (?, ?)`, a.Key(), a.Name); err != nil {
		return fmt.Errorf("indexing author %s: %w", a.Key(), err)
	}
	return nil
}

// GetPaper retrieves a paper by its ID. It returns nil, nil when absent.
func (d *DB) GetPaper(ctx context.Context, id string) (*reference.Reference, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectPaperFields+` FROM papers p WHERE p.id = ?`, id)
	return scanReference(row)
}

// PapersByAuthor returns every cached paper listing the author key, newest
// first.
func (d *DB) PapersByAuthor(ctx context.Context, authorKey string) ([]reference.Reference, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+selectPaperFields+`
		FROM papers p
		JOIN paper_authors pa ON pa.paper_id = p.id
		WHERE pa.author_key = ?
		ORDER BY p.pub_year DESC, p.id
	`, authorKey)
	if err != nil {
		return nil, fmt.Errorf("querying papers of %s: %w", authorKey, err)
	}
	defer rows.Close()
	return scanReferences(rows)
}

// CountPapers returns the number of cached papers.
func (d *DB) CountPapers(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// SearchAuthors performs a full-text search over cached author names.
func (d *DB) SearchAuthors(ctx context.Context, query string, limit int) ([]reference.Author, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT a.author_id, a.name
		FROM authors_fts f
		JOIN authors a ON a.key = f.key
		WHERE authors_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching authors: %w", err)
	}
	defer rows.Close()

	var authors []reference.Author
	for rows.Next() {
		var id sql.NullString
		var a reference.Author
		if err := rows.Scan(&id, &a.Name); err != nil {
			return nil, err
		}
		a.ID = id.String
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// GetLayout returns the stored positions for key.
func (d *DB) GetLayout(ctx context.Context, key string) (layout.Positions, bool, error) {
	var data string
	err := d.db.QueryRowContext(ctx, `SELECT positions_json FROM layouts WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading layout %s: %w", key, err)
	}
	var pos layout.Positions
	if err := json.Unmarshal([]byte(data), &pos); err != nil {
		return nil, false, fmt.Errorf("parsing layout %s: %w", key, err)
	}
	return pos, true, nil
}

// PutLayout stores positions under key, replacing any earlier layout.
func (d *DB) PutLayout(ctx context.Context, key string, pos layout.Positions) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encoding layout %s: %w", key, err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO layouts (key, positions_json, created_at) VALUES (?, ?, ?)`,
		key, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storing layout %s: %w", key, err)
	}
	return nil
}

// PurgeLayouts deletes every stored layout and returns how many were removed.
func (d *DB) PurgeLayouts(ctx context.Context) (int, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM layouts`)
	if err != nil {
		return 0, fmt.Errorf("purging layouts: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanReference(s scanner) (*reference.Reference, error) {
	var ref reference.Reference
	var doi, venue, sourceID sql.NullString
	var pubMonth, pubDay sql.NullInt64
	var authorsJSON string

	err := s.Scan(
		&ref.ID, &doi, &ref.Title, &venue,
		&ref.Published.Year, &pubMonth, &pubDay,
		&ref.Source.Type, &sourceID, &authorsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	ref.DOI = doi.String
	ref.Venue = venue.String
	ref.Source.ID = sourceID.String
	if pubMonth.Valid {
		ref.Published.Month = int(pubMonth.Int64)
	}
	if pubDay.Valid {
		ref.Published.Day = int(pubDay.Int64)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &ref.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", ref.ID, err)
	}
	return &ref, nil
}

func scanReferences(rows *sql.Rows) ([]reference.Reference, error) {
	var refs []reference.Reference
	for rows.Next() {
		ref, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs, rows.Err()
}

func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery turns free text into an FTS5 prefix query, quoting each
// term so punctuation in names cannot break the syntax.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, word := range strings.Fields(query) {
		word = strings.ReplaceAll(word, `"`, "")
		if word == "" {
			continue
		}
		terms = append(terms, `"`+word+`"*`)
	}
	return strings.Join(terms, " ")
}
