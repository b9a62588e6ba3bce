// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders dataset statistics as console text, Markdown,
// and JSON artifacts.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/secwatch/internal/catalog"
)

// Summary is a point-in-time snapshot of the dataset.
type Summary struct {
	GeneratedAt string `json:"generated_at"`
	// FilingType restricts the totals when set ("8-K" or "10-K"); the
	// grouped counts always cover the whole dataset.
	FilingType    string          `json:"filing_type,omitempty"`
	TotalFilings  int             `json:"total_filings"`
	UniqueCIKs    int             `json:"unique_ciks"`
	UniqueTickers int             `json:"unique_tickers"`
	ByType        []catalog.Count `json:"by_type"`
	ByYear        []catalog.Count `json:"by_year"`
	ByQuarter     []catalog.Count `json:"by_quarter"`
	ByItem        []catalog.Count `json:"by_item"`
	TopCompanies  []catalog.Count `json:"top_companies"`
}

// Build assembles a Summary from the catalog. filingType restricts the
// totals to one form type; empty covers both.
func Build(ctx context.Context, store *catalog.Store, filingType string) (*Summary, error) {
	totals, err := store.Totals(ctx, filingType)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		FilingType:    filingType,
		TotalFilings:  totals.Filings,
		UniqueCIKs:    totals.UniqueCIKs,
		UniqueTickers: totals.UniqueTickers,
	}

	if s.ByType, err = store.CountByType(ctx); err != nil {
		return nil, err
	}
	if s.ByYear, err = store.CountByYear(ctx); err != nil {
		return nil, err
	}
	if s.ByQuarter, err = store.CountByYearQuarter(ctx); err != nil {
		return nil, err
	}
	if s.ByItem, err = store.ItemCounts(ctx); err != nil {
		return nil, err
	}
	if s.TopCompanies, err = store.TopCompanies(ctx, 20); err != nil {
		return nil, err
	}
	return s, nil
}

// FormatText writes a human-readable summary to w.
func FormatText(s *Summary, w io.Writer) {
	if s.TotalFilings == 0 {
		fmt.Fprintln(w, "No filings in dataset.")
		return
	}

	fmt.Fprintf(w, "Total filings:  %d\n", s.TotalFilings)
	fmt.Fprintf(w, "Unique CIKs:    %d\n", s.UniqueCIKs)
	fmt.Fprintf(w, "Unique tickers: %d\n", s.UniqueTickers)

	section := func(title string, counts []catalog.Count) {
		if len(counts) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
		for _, c := range counts {
			fmt.Fprintf(w, "%-40s  %d\n", truncate(c.Label, 40), c.N)
		}
	}
	section("By filing type", s.ByType)
	section("By year", s.ByYear)
	section("By quarter", s.ByQuarter)
	section("By disclosure item", s.ByItem)
	section("Top companies", s.TopCompanies)
}

// FormatJSON writes the summary as indented JSON to w.
func FormatJSON(s *Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// FormatMarkdown writes the summary as a Markdown report to w.
func FormatMarkdown(s *Summary, w io.Writer) {
	fmt.Fprintf(w, "# Dataset Statistics\n\nGenerated: %s\n\n", s.GeneratedAt)
	fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(w, "| Total filings | %d |\n", s.TotalFilings)
	fmt.Fprintf(w, "| Unique CIKs | %d |\n", s.UniqueCIKs)
	fmt.Fprintf(w, "| Unique tickers | %d |\n\n", s.UniqueTickers)

	table := func(title, col string, counts []catalog.Count) {
		if len(counts) == 0 {
			return
		}
		fmt.Fprintf(w, "## %s\n\n| %s | Filings |\n|---|---|\n", title, col)
		for _, c := range counts {
			fmt.Fprintf(w, "| %s | %d |\n", c.Label, c.N)
		}
		fmt.Fprintln(w)
	}
	table("By Filing Type", "Type", s.ByType)
	table("By Year", "Year", s.ByYear)
	table("By Quarter", "Quarter", s.ByQuarter)
	table("By Disclosure Item", "Item", s.ByItem)
	table("Top Companies", "Company", s.TopCompanies)
}

// WriteArtifacts writes summary.json and README.md under statsDir.
func WriteArtifacts(s *Summary, statsDir string) error {
	if err := os.MkdirAll(statsDir, 0o755); err != nil {
		return fmt.Errorf("creating stats directory: %w", err)
	}

	jsonPath := filepath.Join(statsDir, "summary.json")
	jf, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", jsonPath, err)
	}
	defer jf.Close()
	if err := FormatJSON(s, jf); err != nil {
		return fmt.Errorf("writing %s: %w", jsonPath, err)
	}

	mdPath := filepath.Join(statsDir, "README.md")
	mf, err := os.Create(mdPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", mdPath, err)
	}
	defer mf.Close()
	FormatMarkdown(s, mf)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
