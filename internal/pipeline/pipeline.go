// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the ingestion batch: list filings, extract
// disclosure sections, convert to Markdown, write dataset records.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pdiddy/secwatch/internal/catalog"
	"github.com/pdiddy/secwatch/internal/convert"
	"github.com/pdiddy/secwatch/internal/dataset"
	"github.com/pdiddy/secwatch/internal/extract"
	"github.com/pdiddy/secwatch/internal/provider"
	"github.com/pdiddy/secwatch/pkg/types"
)

// Summary holds the outcome of an ingestion run.
type Summary struct {
	Written      int
	Skipped      int
	NoDisclosure int
	FetchFailed  int
	WriteFailed  int
}

// Total returns the number of filings considered.
func (s Summary) Total() int {
	return s.Written + s.Skipped + s.NoDisclosure + s.FetchFailed + s.WriteFailed
}

// HasFailures reports whether any filing failed to fetch or write.
func (s Summary) HasFailures() bool {
	return s.FetchFailed > 0 || s.WriteFailed > 0
}

// Pipeline wires a provider to the extractor and dataset writer.
type Pipeline struct {
	Provider provider.Provider
	Specs    []extract.ItemSpec
	Config   types.PipelineConfig
	// Catalog, when set, is updated with every written record.
	Catalog *catalog.Store
}

// ProcessedPath returns the processed-accessions file location, defaulting
// to processed_filings.txt inside the data directory.
func ProcessedPath(cfg types.OutputConfig) string {
	if cfg.ProcessedFile != "" {
		return cfg.ProcessedFile
	}
	return filepath.Join(cfg.DataDir, "processed_filings.txt")
}

// Run lists filings for the query and ingests each one, printing per-filing
// status to w. Individual filing failures are recorded and skipped; only
// listing and processed-file errors abort the run.
func (p *Pipeline) Run(ctx context.Context, query provider.Query, w io.Writer) (Summary, error) {
	var summary Summary

	processed, err := LoadProcessed(ProcessedPath(p.Config.Output))
	if err != nil {
		return summary, err
	}

	filings, err := p.Provider.Filings(ctx, query)
	if err != nil {
		return summary, fmt.Errorf("listing filings: %w", err)
	}
	fmt.Fprintf(w, "Found %d %s filing(s) via %s\n", len(filings), query.FormType, p.Provider.Name())

	for _, filing := range filings {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		label := filingLabel(filing)
		if processed.Contains(filing.AccessionNumber) {
			fmt.Fprintf(w, "skipped: %s (already processed)\n", label)
			summary.Skipped++
			continue
		}

		paths, err := p.ingest(ctx, filing)
		switch {
		case err == errNoDisclosure:
			fmt.Fprintf(w, "no disclosure: %s\n", label)
			summary.NoDisclosure++
		case err != nil:
			if _, ok := err.(*writeError); ok {
				summary.WriteFailed++
			} else {
				summary.FetchFailed++
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", label, err)
		default:
			for _, path := range paths {
				fmt.Fprintf(w, "written: %s\n", path)
			}
			summary.Written++
			if err := processed.Add(filing.AccessionNumber); err != nil {
				return summary, err
			}
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d written, %d skipped, %d without disclosure, %d fetch failed, %d write failed (total: %d)\n",
		summary.Written, summary.Skipped, summary.NoDisclosure,
		summary.FetchFailed, summary.WriteFailed, summary.Total())
	return summary, nil
}

// errNoDisclosure marks a filing with none of the configured items present.
var errNoDisclosure = fmt.Errorf("no disclosure sections found")

// writeError distinguishes filesystem failures from fetch failures in the
// summary tallies.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// ingest processes a single filing end to end and returns the paths
// written.
func (p *Pipeline) ingest(ctx context.Context, filing types.Filing) ([]string, error) {
	doc, err := p.Provider.Document(ctx, filing)
	if err != nil {
		return nil, err
	}

	minChars := p.Config.Extract.MinSectionChars
	var sections []types.Section
	for _, spec := range extract.SpecsForForm(p.Specs, filing.FormType) {
		res, err := extract.Extract(doc, spec, minChars)
		if err != nil {
			return nil, fmt.Errorf("extracting item %s: %w", spec.Code, err)
		}
		if res == nil {
			continue
		}

		var markdown string
		if res.HTML != "" {
			markdown, err = convert.ToMarkdown(res.HTML)
			if err != nil {
				return nil, fmt.Errorf("converting item %s: %w", spec.Code, err)
			}
		} else {
			markdown = convert.Clean(res.Text)
		}
		sections = append(sections, types.Section{
			Code:     spec.Code,
			Title:    spec.Title,
			Markdown: markdown,
		})
	}
	if len(sections) == 0 {
		return nil, errNoDisclosure
	}

	record := dataset.Record{Filing: filing, Sections: sections}
	paths, err := dataset.Write(p.Config.Output.DataDir, record, p.Config.Output.SplitItems)
	if err != nil {
		return nil, &writeError{err}
	}

	if p.Catalog != nil {
		fm := dataset.NewFrontmatter(filing, sections)
		for _, path := range paths {
			if p.Config.Output.SplitItems && len(sections) > 1 {
				// Split files each carry a single item; reindex from
				// content to keep items exact.
				if sfm, err := dataset.ReadFrontmatter(path); err == nil {
					fm = sfm
				}
			}
			if err := p.Catalog.Upsert(ctx, path, fm); err != nil {
				return paths, &writeError{err}
			}
		}
	}
	return paths, nil
}

func filingLabel(f types.Filing) string {
	who := f.Ticker
	if who == "" {
		who = f.CIK
	}
	return fmt.Sprintf("%s %s %s (%s)", who, f.FormType, f.FilingDate, f.AccessionNumber)
}
