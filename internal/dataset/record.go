// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset defines the on-disk output format: Markdown records with
// YAML frontmatter in a data/<TYPE>/<YEAR>/<QUARTER>/ tree.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/secwatch/pkg/types"
)

const dateLayout = "2006-01-02"

// Frontmatter is the YAML metadata block at the top of every output file.
// 8-K records carry a single item; 10-K records carry an items list.
type Frontmatter struct {
	Ticker          string   `yaml:"ticker"`
	CompanyName     string   `yaml:"company_name"`
	CIK             string   `yaml:"cik"`
	FilingDate      string   `yaml:"filing_date"`
	FilingType      string   `yaml:"filing_type"`
	Item            string   `yaml:"item,omitempty"`
	Items           []string `yaml:"items,omitempty"`
	AccessionNumber string   `yaml:"accession_number"`
	SourceLink      string   `yaml:"source_link"`
}

// ItemCodes returns the item codes regardless of form type.
func (f Frontmatter) ItemCodes() []string {
	if f.Item != "" {
		return []string{f.Item}
	}
	return f.Items
}

// Record is one output file: a filing plus its extracted sections.
type Record struct {
	Filing   types.Filing
	Sections []types.Section
}

// Key is the dedupe key: CIK + filing date + filing type must be unique
// across the dataset.
func (r Record) Key() string {
	return r.Filing.CIK + "|" + r.Filing.FilingDate + "|" + string(r.Filing.FormType)
}

// Quarter returns the year and calendar quarter ("Q1".."Q4") of a
// YYYY-MM-DD filing date.
func Quarter(filingDate string) (year, quarter string, err error) {
	t, err := time.Parse(dateLayout, filingDate)
	if err != nil {
		return "", "", fmt.Errorf("invalid filing date %q: %w", filingDate, err)
	}
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d", t.Year()), fmt.Sprintf("Q%d", q), nil
}

// Path returns the output path for the record under dataDir, with an
// optional item-code suffix used in split-items mode:
//
//	<dataDir>/<8K|10K>/<YEAR>/<Qn>/<CIK>_<DATE>_<8K|10K>[_<ITEM>].md
func (r Record) Path(dataDir, itemSuffix string) (string, error) {
	year, quarter, err := Quarter(r.Filing.FilingDate)
	if err != nil {
		return "", err
	}
	compact := r.Filing.FormType.Compact()
	name := fmt.Sprintf("%s_%s_%s", r.Filing.CIK, r.Filing.FilingDate, compact)
	if itemSuffix != "" {
		name += "_" + itemSuffix
	}
	return filepath.Join(dataDir, compact, year, quarter, name+".md"), nil
}

// Write renders the record and writes it under dataDir, creating the dated
// directory as needed. With split true, each section becomes its own file
// with the item code suffixed to the name. Writes go through a temporary
// file and rename so a failure never leaves partial output. It returns the
// paths written.
func Write(dataDir string, r Record, split bool) ([]string, error) {
	if len(r.Sections) == 0 {
		return nil, fmt.Errorf("record %s has no sections", r.Key())
	}

	if !split || len(r.Sections) == 1 && r.Filing.FormType == types.Form8K {
		path, err := r.Path(dataDir, "")
		if err != nil {
			return nil, err
		}
		if err := writeFile(path, render(r.Filing, r.Sections)); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, sec := range r.Sections {
		path, err := r.Path(dataDir, sec.Code)
		if err != nil {
			return nil, err
		}
		if err := writeFile(path, render(r.Filing, []types.Section{sec})); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// NewFrontmatter builds the metadata block for a filing and its sections.
// 8-K filings get a scalar item, everything else an items list.
func NewFrontmatter(f types.Filing, sections []types.Section) Frontmatter {
	fm := Frontmatter{
		Ticker:          f.Ticker,
		CompanyName:     f.CompanyName,
		CIK:             f.CIK,
		FilingDate:      f.FilingDate,
		FilingType:      string(f.FormType),
		AccessionNumber: f.AccessionNumber,
		SourceLink:      f.Link(),
	}
	switch f.FormType {
	case types.Form8K:
		if len(sections) > 0 {
			fm.Item = sections[0].Code
		}
	default:
		for _, s := range sections {
			fm.Items = append(fm.Items, s.Code)
		}
	}
	return fm
}

// render builds the full file content: frontmatter followed by one `##`
// heading and body per section.
func render(f types.Filing, sections []types.Section) string {
	fm := NewFrontmatter(f, sections)

	var b strings.Builder
	b.WriteString("---\n")
	data, _ := yaml.Marshal(fm)
	b.Write(data)
	b.WriteString("---\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.Title, s.Markdown)
	}
	return b.String()
}

// writeFile writes content atomically: temp file in the target directory,
// then rename.
func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".secwatch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.WriteString(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
