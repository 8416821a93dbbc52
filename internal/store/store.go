// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists accepted tender records in a SQLite archive so
// that repeated runs accumulate history and can deduplicate across days.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tender-watch/pkg/types"
)

const dbFile = "tender.db"

// Store manages the tender archive SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at dataDir/tender.db,
// creating the schema when missing.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS records (
			fingerprint TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			source TEXT NOT NULL,
			bid_no TEXT,
			purchaser TEXT,
			agency TEXT,
			publish_date TEXT,
			deadline TEXT,
			budget REAL,
			contact TEXT,
			address TEXT,
			industry TEXT,
			matched_keywords TEXT,
			fetch_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_source ON records(source)`,
		`CREATE INDEX IF NOT EXISTS idx_records_publish_date ON records(publish_date)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSummary holds counts from an archive run.
type SaveSummary struct {
	Inserted int
	Existing int
}

// Save archives the records, keyed by fingerprint. Records already
// present are left untouched and counted as existing.
func (s *Store) Save(ctx context.Context, records []types.Record) (SaveSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO records
		 (fingerprint, title, url, source, bid_no, purchaser, agency,
		  publish_date, deadline, budget, contact, address, industry,
		  matched_keywords, fetch_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var summary SaveSummary
	for i := range records {
		rec := &records[i]
		keywordsJSON, _ := json.Marshal(rec.MatchedKeywords)
		res, err := stmt.ExecContext(ctx,
			rec.Fingerprint(), rec.Title, rec.URL, rec.Source,
			rec.BidNo, rec.Purchaser, rec.Agency,
			timeString(rec.PublishDate), timeString(rec.Deadline),
			rec.Budget, rec.Contact, rec.Address, rec.Industry,
			string(keywordsJSON), rec.FetchTime.Format(time.RFC3339),
		)
		if err != nil {
			return summary, fmt.Errorf("inserting record %s: %w", rec.Fingerprint(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return summary, fmt.Errorf("checking insert result: %w", err)
		}
		if n > 0 {
			summary.Inserted++
		} else {
			summary.Existing++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

// Known reports which of the given fingerprints are already archived.
func (s *Store) Known(ctx context.Context, fingerprints []string) (map[string]bool, error) {
	known := make(map[string]bool, len(fingerprints))
	stmt, err := s.db.PrepareContext(ctx,
		`SELECT 1 FROM records WHERE fingerprint = ?`)
	if err != nil {
		return nil, fmt.Errorf("preparing lookup: %w", err)
	}
	defer stmt.Close()

	for _, fp := range fingerprints {
		var one int
		err := stmt.QueryRowContext(ctx, fp).Scan(&one)
		switch {
		case err == sql.ErrNoRows:
			continue
		case err != nil:
			return nil, fmt.Errorf("looking up fingerprint: %w", err)
		default:
			known[fp] = true
		}
	}
	return known, nil
}

// Recent returns archived records with a publish date on or after since,
// newest first.
func (s *Store) Recent(ctx context.Context, since time.Time) ([]types.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, url, source, bid_no, purchaser, agency,
		        publish_date, deadline, budget, contact, address, industry,
		        matched_keywords, fetch_time
		 FROM records
		 WHERE publish_date >= ?
		 ORDER BY publish_date DESC`,
		since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var rec types.Record
		var publishDate, deadline, keywordsJSON, fetchTime string
		if err := rows.Scan(
			&rec.Title, &rec.URL, &rec.Source, &rec.BidNo, &rec.Purchaser,
			&rec.Agency, &publishDate, &deadline, &rec.Budget,
			&rec.Contact, &rec.Address, &rec.Industry,
			&keywordsJSON, &fetchTime,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.PublishDate = parseTime(publishDate)
		rec.Deadline = parseTime(deadline)
		rec.FetchTime = parseTime(fetchTime)
		if keywordsJSON != "" {
			_ = json.Unmarshal([]byte(keywordsJSON), &rec.MatchedKeywords)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

// Count returns the total number of archived records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
