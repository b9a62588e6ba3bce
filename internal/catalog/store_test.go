// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/secwatch/internal/dataset"
	"github.com/pdiddy/secwatch/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testFrontmatter(cik, date, formType, ticker string, items ...string) dataset.Frontmatter {
	fm := dataset.Frontmatter{
		Ticker:          ticker,
		CompanyName:     ticker + " Corp",
		CIK:             cik,
		FilingDate:      date,
		FilingType:      formType,
		AccessionNumber: "0001-" + cik + "-" + date,
		SourceLink:      "https://www.sec.gov/Archives/example.htm",
	}
	if formType == "8-K" && len(items) == 1 {
		fm.Item = items[0]
	} else {
		fm.Items = items
	}
	return fm
}

func TestUpsertAndTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a.md", testFrontmatter("123", "2024-01-15", "8-K", "ACME", "1.05")))
	require.NoError(t, s.Upsert(ctx, "data/10K/2024/Q1/b.md", testFrontmatter("456", "2024-02-20", "10-K", "BETA", "106", "407j")))

	totals, err := s.Totals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Filings)
	assert.Equal(t, 2, totals.UniqueCIKs)
	assert.Equal(t, 2, totals.UniqueTickers)

	totals, err = s.Totals(ctx, "8-K")
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Filings)
}

func TestUpsertIsIdempotentPerPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fm := testFrontmatter("123", "2024-01-15", "8-K", "ACME", "1.05")
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a.md", fm))
	fm.CompanyName = "Acme Renamed Inc"
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a.md", fm))

	totals, err := s.Totals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, totals.Filings)

	top, err := s.TopCompanies(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Acme Renamed Inc", top[0].Label)
}

func TestUpsertRejectsBadDate(t *testing.T) {
	s := openTestStore(t)
	fm := testFrontmatter("123", "01/15/2024", "8-K", "ACME", "1.05")
	err := s.Upsert(context.Background(), "data/8K/2024/Q1/a.md", fm)
	assert.Error(t, err)
}

func TestDuplicateAccessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fm := testFrontmatter("123", "2024-01-15", "8-K", "ACME", "1.05")
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a.md", fm))
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a-copy.md", fm))
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q2/c.md", testFrontmatter("789", "2024-05-01", "8-K", "GAMA", "1.05")))

	dups, err := s.DuplicateAccessions(ctx)
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, fm.AccessionNumber, dups[0].Key)
	assert.ElementsMatch(t, []string{"data/8K/2024/Q1/a-copy.md", "data/8K/2024/Q1/a.md"}, dups[0].Paths)
}

func TestDuplicateKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a := testFrontmatter("123", "2024-01-15", "8-K", "ACME", "1.05")
	b := testFrontmatter("123", "2024-01-15", "8-K", "ACME", "1.05")
	b.AccessionNumber = "0001-123-other"
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/a.md", a))
	require.NoError(t, s.Upsert(ctx, "data/8K/2024/Q1/b.md", b))

	dups, err := s.DuplicateKeys(ctx)
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, "123|2024-01-15|8-K", dups[0].Key)
	assert.Len(t, dups[0].Paths, 2)

	// Different accessions do not trip the accession check.
	accDups, err := s.DuplicateAccessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, accDups)
}

func TestDuplicateKeysIgnoresSplitItemFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	dataDir := t.TempDir()

	// One 10-K written as per-item files shares a single accession number
	// across the (cik, date, type) key and must not count as a duplicate.
	rec := dataset.Record{
		Filing: types.Filing{
			AccessionNumber: "0000123-24-000001",
			CIK:             "123",
			Ticker:          "ACME",
			CompanyName:     "Acme Corp",
			FormType:        types.Form10K,
			FilingDate:      "2024-03-01",
			DocumentURL:     "https://www.sec.gov/Archives/example.htm",
		},
		Sections: []types.Section{
			{Code: "106", Title: "Item 106. Cybersecurity", Markdown: "Risk management."},
			{Code: "407j", Title: "Item 407(j). Insider Trading", Markdown: "Policies."},
		},
	}
	paths, err := dataset.Write(dataDir, rec, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	n, err := s.Reindex(ctx, dataDir)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	dups, err := s.DuplicateKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, dups)

	// A second filing with the same key but its own accession is still caught.
	other := testFrontmatter("123", "2024-03-01", "10-K", "ACME", "106")
	other.AccessionNumber = "0000123-24-000099"
	require.NoError(t, s.Upsert(ctx, "data/10K/2024/Q1/late.md", other))

	dups, err = s.DuplicateKeys(ctx)
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, "123|2024-03-01|10-K", dups[0].Key)
	assert.Len(t, dups[0].Paths, 3)
}

func TestCountGroupings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a.md", testFrontmatter("1", "2023-03-01", "8-K", "AAA", "1.05")))
	require.NoError(t, s.Upsert(ctx, "b.md", testFrontmatter("2", "2024-01-15", "8-K", "BBB", "1.05")))
	require.NoError(t, s.Upsert(ctx, "c.md", testFrontmatter("3", "2024-07-04", "10-K", "CCC", "106", "407j")))

	byType, err := s.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"10-K", 1}, {"8-K", 2}}, byType)

	byYear, err := s.CountByYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"2023", 1}, {"2024", 2}}, byYear)

	byYQ, err := s.CountByYearQuarter(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"2023/Q1", 1}, {"2024/Q1", 1}, {"2024/Q3", 1}}, byYQ)

	items, err := s.ItemCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"1.05", 2}, {"106", 1}, {"407j", 1}}, items)
}

func TestReindex(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("8K/2024/Q1/0000000123_2024-01-15_8K.md", `---
ticker: ACME
company_name: Acme Corp
cik: "0000000123"
filing_date: "2024-01-15"
filing_type: 8-K
item: "1.05"
accession_number: 0001-23-000001
source_link: https://www.sec.gov/Archives/a.htm
---

## Material Cybersecurity Incidents

Incident details.
`)
	write("10K/2024/Q2/0000000456_2024-04-02_10K.md", `---
ticker: BETA
company_name: Beta Inc
cik: "0000000456"
filing_date: "2024-04-02"
filing_type: 10-K
items:
  - "106"
accession_number: 0001-45-000002
source_link: https://www.sec.gov/Archives/b.htm
---

## Cybersecurity

Risk management.
`)
	write("8K/2024/Q1/broken.md", "no frontmatter here\n")
	write("README.md", "# dataset\n")

	s := openTestStore(t)
	n, err := s.Reindex(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	totals, err := s.Totals(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Filings)

	// A second pass replaces, never accumulates.
	n, err = s.Reindex(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	totals, err = s.Totals(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Filings)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "catalog.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Upsert(context.Background(), "a.md", testFrontmatter("1", "2024-01-01", "8-K", "AAA", "1.05")))
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
