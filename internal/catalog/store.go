// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a SQLite index of ingested filings, used for
// duplicate detection and dataset statistics.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/secwatch/internal/dataset"
)

// Store manages the filing catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path and ensures the
// schema exists. Use ":memory:" for a throwaway index rebuilt from the
// data tree.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		dsn += "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
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
		`CREATE TABLE IF NOT EXISTS filings (
			path TEXT PRIMARY KEY,
			accession_number TEXT NOT NULL,
			cik TEXT NOT NULL,
			ticker TEXT,
			company_name TEXT,
			filing_date TEXT NOT NULL,
			filing_type TEXT NOT NULL,
			year TEXT NOT NULL,
			quarter TEXT NOT NULL,
			items TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_accession ON filings(accession_number)`,
		`CREATE INDEX IF NOT EXISTS idx_filings_key ON filings(cik, filing_date, filing_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert records one output file in the catalog.
func (s *Store) Upsert(ctx context.Context, path string, fm dataset.Frontmatter) error {
	year, quarter, err := dataset.Quarter(fm.FilingDate)
	if err != nil {
		return err
	}
	itemsJSON, _ := json.Marshal(fm.ItemCodes())

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filings (path, accession_number, cik, ticker, company_name,
			filing_date, filing_type, year, quarter, items, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			accession_number=excluded.accession_number, cik=excluded.cik,
			ticker=excluded.ticker, company_name=excluded.company_name,
			filing_date=excluded.filing_date, filing_type=excluded.filing_type,
			year=excluded.year, quarter=excluded.quarter, items=excluded.items,
			ingested_at=excluded.ingested_at`,
		path, fm.AccessionNumber, fm.CIK, fm.Ticker, fm.CompanyName,
		fm.FilingDate, fm.FilingType, year, quarter, string(itemsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting filing %s: %w", path, err)
	}
	return nil
}

// Reindex clears the catalog and rebuilds it by scanning every record
// under dataDir. Files whose frontmatter does not parse are skipped; the
// schema validator reports those separately. It returns the number of
// records indexed.
func (s *Store) Reindex(ctx context.Context, dataDir string) (int, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM filings`); err != nil {
		return 0, fmt.Errorf("clearing catalog: %w", err)
	}

	indexed := 0
	err := dataset.WalkRecords(dataDir, func(path string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fm, err := dataset.ReadFrontmatter(path)
		if err != nil {
			return nil
		}
		if err := s.Upsert(ctx, path, fm); err != nil {
			return nil
		}
		indexed++
		return nil
	})
	if err != nil {
		return indexed, err
	}
	return indexed, nil
}

// Duplicate is a group of record files sharing a key that must be unique.
type Duplicate struct {
	Key   string
	Paths []string
}

// DuplicateAccessions returns groups of files sharing an accession number.
func (s *Store) DuplicateAccessions(ctx context.Context) ([]Duplicate, error) {
	return s.duplicates(ctx,
		`SELECT accession_number, path FROM filings
		 WHERE accession_number IN (
			SELECT accession_number FROM filings
			WHERE accession_number != ''
			GROUP BY accession_number HAVING count(*) > 1)
		 ORDER BY accession_number, path`)
}

// DuplicateKeys returns groups of files sharing a CIK + filing date +
// filing type combination. Groups whose members all carry the same
// accession number are one filing written as per-item files, not
// duplicates, and are excluded.
func (s *Store) DuplicateKeys(ctx context.Context) ([]Duplicate, error) {
	return s.duplicates(ctx,
		`SELECT cik || '|' || filing_date || '|' || filing_type AS k, path FROM filings
		 WHERE (cik, filing_date, filing_type) IN (
			SELECT cik, filing_date, filing_type FROM filings
			GROUP BY cik, filing_date, filing_type
			HAVING count(*) > 1 AND count(DISTINCT accession_number) > 1)
		 ORDER BY k, path`)
}

func (s *Store) duplicates(ctx context.Context, query string) ([]Duplicate, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying duplicates: %w", err)
	}
	defer rows.Close()

	var dups []Duplicate
	for rows.Next() {
		var key, path string
		if err := rows.Scan(&key, &path); err != nil {
			return nil, err
		}
		if n := len(dups); n > 0 && dups[n-1].Key == key {
			dups[n-1].Paths = append(dups[n-1].Paths, path)
		} else {
			dups = append(dups, Duplicate{Key: key, Paths: []string{path}})
		}
	}
	return dups, rows.Err()
}

// Totals holds dataset-wide counts.
type Totals struct {
	Filings       int
	UniqueCIKs    int
	UniqueTickers int
}

// Totals returns overall counts, optionally filtered to one filing type
// ("" means both).
func (s *Store) Totals(ctx context.Context, filingType string) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
			count(DISTINCT cik),
			count(DISTINCT CASE WHEN ticker != '' THEN upper(ticker) END)
		 FROM filings WHERE ? = '' OR filing_type = ?`,
		filingType, filingType,
	).Scan(&t.Filings, &t.UniqueCIKs, &t.UniqueTickers)
	if err != nil {
		return t, fmt.Errorf("querying totals: %w", err)
	}
	return t, nil
}

// Count is a labelled count row.
type Count struct {
	Label string
	N     int
}

// CountByType returns filing counts grouped by filing type.
func (s *Store) CountByType(ctx context.Context) ([]Count, error) {
	return s.counts(ctx, `SELECT filing_type, count(*) FROM filings GROUP BY filing_type ORDER BY filing_type`)
}

// CountByYear returns filing counts grouped by year.
func (s *Store) CountByYear(ctx context.Context) ([]Count, error) {
	return s.counts(ctx, `SELECT year, count(*) FROM filings GROUP BY year ORDER BY year`)
}

// CountByYearQuarter returns filing counts grouped by year/quarter.
func (s *Store) CountByYearQuarter(ctx context.Context) ([]Count, error) {
	return s.counts(ctx, `SELECT year || '/' || quarter, count(*) FROM filings GROUP BY year, quarter ORDER BY year, quarter`)
}

// TopCompanies returns the companies with the most filings, identified by
// company name, falling back to ticker then CIK.
func (s *Store) TopCompanies(ctx context.Context, limit int) ([]Count, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.counts(ctx, fmt.Sprintf(
		`SELECT CASE WHEN company_name != '' THEN company_name
			WHEN ticker != '' THEN ticker ELSE cik END AS company, count(*) AS n
		 FROM filings GROUP BY company ORDER BY n DESC, company LIMIT %d`, limit))
}

// ItemCounts returns how many filings disclose each item code.
func (s *Store) ItemCounts(ctx context.Context) ([]Count, error) {
	return s.counts(ctx,
		`SELECT value, count(*) FROM filings, json_each(filings.items)
		 GROUP BY value ORDER BY value`)
}

func (s *Store) counts(ctx context.Context, query string) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying counts: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Label, &c.N); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
