// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"os"
	"regexp"
)

var filingDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// required8K and required10K are the frontmatter fields every record of
// that form type must carry.
var (
	required8K  = []string{"ticker", "company_name", "cik", "filing_date", "filing_type", "item", "accession_number"}
	required10K = []string{"ticker", "company_name", "cik", "filing_date", "filing_type", "items", "accession_number"}
)

var valid10KItems = map[string]bool{"106": true, "407j": true}

// Violation is one schema problem in one record file.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ValidateContent checks a record's content against the dataset schema and
// returns every violation found rather than stopping at the first.
func ValidateContent(content string) []string {
	fm, err := ParseFrontmatter(content)
	if err != nil {
		return []string{err.Error()}
	}

	var errs []string

	fields := map[string]bool{
		"ticker":           fm.Ticker != "",
		"company_name":     fm.CompanyName != "",
		"cik":              fm.CIK != "",
		"filing_date":      fm.FilingDate != "",
		"filing_type":      fm.FilingType != "",
		"item":             fm.Item != "",
		"items":            len(fm.Items) > 0,
		"accession_number": fm.AccessionNumber != "",
	}

	var required []string
	switch fm.FilingType {
	case "8-K":
		required = required8K
		if fm.Item != "" && fm.Item != "1.05" {
			errs = append(errs, fmt.Sprintf("unexpected 8-K item value: %s", fm.Item))
		}
	case "10-K":
		required = required10K
		for _, it := range fm.Items {
			if !valid10KItems[it] {
				errs = append(errs, fmt.Sprintf("unexpected 10-K item value: %s", it))
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid filing_type: %q (expected 8-K or 10-K)", fm.FilingType))
		// Fields common to both types are still checked.
		required = []string{"ticker", "company_name", "cik", "filing_date", "accession_number"}
	}

	for _, f := range required {
		if !fields[f] {
			errs = append(errs, fmt.Sprintf("missing required field: %s", f))
		}
	}

	if fm.FilingDate != "" && !filingDateRe.MatchString(fm.FilingDate) {
		errs = append(errs, fmt.Sprintf("filing_date %q does not match YYYY-MM-DD", fm.FilingDate))
	}

	return errs
}

// ValidateTree validates every record under dataDir and returns all
// violations plus the number of files checked.
func ValidateTree(dataDir string) ([]Violation, int, error) {
	var violations []Violation
	checked := 0

	err := WalkRecords(dataDir, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		checked++
		for _, msg := range ValidateContent(string(data)) {
			violations = append(violations, Violation{Path: path, Message: msg})
		}
		return nil
	})
	if err != nil {
		return nil, checked, err
	}
	return violations, checked, nil
}
