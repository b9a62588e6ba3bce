// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/secwatch/pkg/types"
)

// ItemSpec describes one disclosure item: its code, display title, the form
// type it appears on, and the synonym patterns that locate its heading. The
// SEC periodically renumbers items (Item 106 appears as "Item 1C" in
// post-2023 10-K layouts), so the pattern sets are data, not code.
type ItemSpec struct {
	// Code is the canonical item code used in frontmatter: "1.05", "106", "407j".
	Code string `yaml:"code"`

	// Title is the section heading written to the Markdown body.
	Title string `yaml:"title"`

	// FormType is the form the item appears on.
	FormType types.FormType `yaml:"form_type"`

	// StartPatterns are case-insensitive regular expressions matched against
	// whitespace-collapsed document text. The first pattern occurrence in
	// document order marks the start of the section.
	StartPatterns []string `yaml:"start_patterns"`

	compiled []*regexp.Regexp
}

// Compile prepares the start patterns for matching. Patterns are applied
// case-insensitively regardless of how they are written in the config file.
func (s *ItemSpec) Compile() error {
	s.compiled = s.compiled[:0]
	if len(s.StartPatterns) == 0 {
		return fmt.Errorf("item %s: no start patterns", s.Code)
	}
	for _, p := range s.StartPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("item %s: pattern %q: %w", s.Code, p, err)
		}
		s.compiled = append(s.compiled, re)
	}
	return nil
}

// findStart returns the [start, end) bounds of the earliest start-pattern
// match in text. Ties on start position keep the longer match so the
// specific "Item 1.05 Material Cybersecurity Incidents" synonym wins over
// the bare "Item 1.05".
func (s *ItemSpec) findStart(text string) (int, int, bool) {
	best := [2]int{-1, -1}
	for _, re := range s.compiled {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best[0] == -1 || loc[0] < best[0] || (loc[0] == best[0] && loc[1] > best[1]) {
			best = [2]int{loc[0], loc[1]}
		}
	}
	if best[0] == -1 {
		return 0, 0, false
	}
	return best[0], best[1], true
}

// matchesAt reports whether any start pattern matches at the beginning of
// text. Used to tell the spec's own heading apart from a boundary heading.
func (s *ItemSpec) matchesAt(text string) bool {
	for _, re := range s.compiled {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			return true
		}
	}
	return false
}

// DefaultSpecs returns the built-in item pattern sets covering the 2023 SEC
// cybersecurity disclosure rules, including the later "Item 1C" renumbering
// of Item 106.
func DefaultSpecs() []ItemSpec {
	specs := []ItemSpec{
		{
			Code:     "1.05",
			Title:    "Item 1.05. Material Cybersecurity Incidents",
			FormType: types.Form8K,
			StartPatterns: []string{
				`item\s+1\.05[\s.:—–-]+material\s+cybersecurity\s+incidents?`,
				`item\s+1\.05\b`,
			},
		},
		{
			Code:     "106",
			Title:    "Item 106. Cybersecurity Risk Management, Strategy, and Governance",
			FormType: types.Form10K,
			StartPatterns: []string{
				`item\s+106[\s.:—–-]+cybersecurity`,
				`item\s+106\b`,
				`item\s+1c[\s.:—–-]+cybersecurity`,
				`item\s+1c\b`,
			},
		},
		{
			Code:     "407j",
			Title:    "Item 407(j). Board Oversight of Cybersecurity Risk",
			FormType: types.Form10K,
			StartPatterns: []string{
				`item\s+407\s*\(\s*j\s*\)`,
				`item\s+407j\b`,
			},
		},
	}
	for i := range specs {
		// Built-in patterns are static; compilation cannot fail.
		if err := specs[i].Compile(); err != nil {
			panic(err)
		}
	}
	return specs
}

// itemsFile is the on-disk shape of an item pattern override file.
type itemsFile struct {
	Items []ItemSpec `yaml:"items"`
}

// LoadSpecs reads item pattern sets from a YAML file and compiles them.
// The file replaces the built-in defaults entirely.
func LoadSpecs(path string) ([]ItemSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items file: %w", err)
	}
	var f itemsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing items file %s: %w", path, err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("items file %s defines no items", path)
	}
	for i := range f.Items {
		if err := f.Items[i].Compile(); err != nil {
			return nil, err
		}
	}
	return f.Items, nil
}

// SpecsForForm filters specs to those applying to the given form type.
func SpecsForForm(specs []ItemSpec, form types.FormType) []ItemSpec {
	var out []ItemSpec
	for _, s := range specs {
		if s.FormType == form {
			out = append(out, s)
		}
	}
	return out
}
