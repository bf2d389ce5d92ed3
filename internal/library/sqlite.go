package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/biblioflow/biblioflow/internal/record"
)

// index is the SQLite query cache over the JSONL library. It is ephemeral:
// rebuilt from JSONL whenever the two disagree.
type index struct {
	db *sql.DB
}

const selectEntryFields = `id, original_name, path, title, venue, doi,
	pub_year, confidence, authors_json, citations_json,
	processed_at, superseded_by`

func openIndex(path string) (*index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	// SQLite does not support concurrent writers.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			original_name TEXT NOT NULL,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			venue TEXT,
			doi TEXT,
			pub_year INTEGER,
			confidence TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			citations_json TEXT,
			processed_at TEXT NOT NULL,
			superseded_by TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_entries_path ON entries(path);
		CREATE INDEX IF NOT EXISTS idx_entries_doi ON entries(doi) WHERE doi IS NOT NULL AND doi != '';

		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			id,
			title,
			venue,
			authors_text
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	return &index{db: db}, nil
}

func (ix *index) close() error {
	return ix.db.Close()
}

// rebuild clears the index and repopulates it from the given entries.
func (ix *index) rebuild(entries []Entry) error {
	if _, err := ix.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := ix.db.Exec("DELETE FROM entries_fts"); err != nil {
		return fmt.Errorf("clearing fts: %w", err)
	}
	for _, e := range entries {
		if err := ix.insert(e); err != nil {
			return err
		}
	}
	return nil
}

func (ix *index) insert(e Entry) error {
	authorsJSON, err := json.Marshal(e.Record.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors for %s: %w", e.ID, err)
	}
	var citationsJSON []byte
	if len(e.Citations) > 0 {
		citationsJSON, err = json.Marshal(e.Citations)
		if err != nil {
			return fmt.Errorf("marshaling citations for %s: %w", e.ID, err)
		}
	}

	var year any
	if e.Record.Year != nil {
		year = *e.Record.Year
	}

	_, err = ix.db.Exec(`
		INSERT INTO entries (
			id, original_name, path, title, venue, doi,
			pub_year, confidence, authors_json, citations_json,
			processed_at, superseded_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.OriginalName, e.Path, e.Record.Title, e.Record.Venue, e.Record.DOI,
		year, string(e.Record.Confidence), string(authorsJSON), nullable(citationsJSON),
		e.ProcessedAt.UTC().Format("2006-01-02T15:04:05Z07:00"), nullableStr(e.SupersededBy),
	)
	if err != nil {
		return fmt.Errorf("inserting entry %s: %w", e.ID, err)
	}

	_, err = ix.db.Exec(`
		INSERT INTO entries_fts (id, title, venue, authors_text)
		VALUES (?, ?, ?, ?)
	`, e.ID, e.Record.Title, e.Record.Venue, authorsText(e.Record.Authors))
	if err != nil {
		return fmt.Errorf("indexing entry %s: %w", e.ID, err)
	}
	return nil
}

func (ix *index) remove(id string) error {
	if _, err := ix.db.Exec("DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	if _, err := ix.db.Exec("DELETE FROM entries_fts WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting fts row %s: %w", id, err)
	}
	return nil
}

func (ix *index) markSuperseded(id, by string) error {
	_, err := ix.db.Exec("UPDATE entries SET superseded_by = ? WHERE id = ?", by, id)
	if err != nil {
		return fmt.Errorf("marking %s superseded: %w", id, err)
	}
	return nil
}

// getByPath does a point lookup on the organized file path.
func (ix *index) getByPath(path string) (*Entry, error) {
	row := ix.db.QueryRow(`SELECT `+selectEntryFields+` FROM entries WHERE path = ?`, path)
	return scanEntry(row)
}

func (ix *index) getByID(id string) (*Entry, error) {
	row := ix.db.QueryRow(`SELECT `+selectEntryFields+` FROM entries WHERE id = ?`, id)
	return scanEntry(row)
}

// search runs a full-text query over titles, venues, and author names.
func (ix *index) search(query string, limit int) ([]Entry, error) {
	rows, err := ix.db.Query(`
		SELECT `+selectEntryFields+`
		FROM entries
		WHERE id IN (SELECT id FROM entries_fts WHERE entries_fts MATCH ?)
		ORDER BY processed_at DESC
		LIMIT ?
	`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var venue, doi, citationsJSON, supersededBy sql.NullString
	var year sql.NullInt64
	var authorsJSON, processedAt, confidence string

	err := row.Scan(
		&e.ID, &e.OriginalName, &e.Path, &e.Record.Title, &venue, &doi,
		&year, &confidence, &authorsJSON, &citationsJSON,
		&processedAt, &supersededBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	e.Record.Venue = venue.String
	e.Record.DOI = doi.String
	e.Record.Confidence = record.Confidence(confidence)
	e.SupersededBy = supersededBy.String
	if year.Valid {
		y := int(year.Int64)
		e.Record.Year = &y
	}
	if err := json.Unmarshal([]byte(authorsJSON), &e.Record.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors for %s: %w", e.ID, err)
	}
	if citationsJSON.Valid && citationsJSON.String != "" {
		if err := json.Unmarshal([]byte(citationsJSON.String), &e.Citations); err != nil {
			return nil, fmt.Errorf("parsing citations for %s: %w", e.ID, err)
		}
	}
	if t, err := parseTime(processedAt); err == nil {
		e.ProcessedAt = t
	}
	return &e, nil
}

func authorsText(authors []record.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.FullName())
	}
	return strings.Join(names, ", ")
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
