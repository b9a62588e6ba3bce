// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const valid8KRecord = `---
ticker: ACME
company_name: Acme Corp
cik: "0000012345"
filing_date: "2024-01-15"
filing_type: 8-K
item: "1.05"
accession_number: 0000012345-24-000001
source_link: https://www.sec.gov/Archives/acme-8k.htm
---

## Item 1.05. Material Cybersecurity Incidents

Incident details.
`

const valid10KRecord = `---
ticker: BETA
company_name: Beta Inc
cik: "0000067890"
filing_date: "2024-04-02"
filing_type: 10-K
items:
  - "106"
  - 407j
accession_number: 0000067890-24-000007
source_link: https://www.sec.gov/Archives/beta-10k.htm
---

## Item 106. Cybersecurity

Risk management.
`

func TestValidateContentValid(t *testing.T) {
	assert.Empty(t, ValidateContent(valid8KRecord))
	assert.Empty(t, ValidateContent(valid10KRecord))
}

func TestValidateContentMissingFields(t *testing.T) {
	content := `---
ticker: ACME
filing_date: "2024-01-15"
filing_type: 8-K
item: "1.05"
---
body
`
	errs := ValidateContent(content)
	assert.Contains(t, errs, "missing required field: cik")
	assert.Contains(t, errs, "missing required field: company_name")
	assert.Contains(t, errs, "missing required field: accession_number")
	assert.NotContains(t, errs, "missing required field: ticker")
}

func TestValidateContentBadItem(t *testing.T) {
	errs := ValidateContent(`---
ticker: ACME
company_name: Acme Corp
cik: "123"
filing_date: "2024-01-15"
filing_type: 8-K
item: "9.01"
accession_number: acc-1
---
body
`)
	assert.Contains(t, errs, "unexpected 8-K item value: 9.01")

	errs = ValidateContent(`---
ticker: BETA
company_name: Beta Inc
cik: "456"
filing_date: "2024-04-02"
filing_type: 10-K
items: ["106", "1A"]
accession_number: acc-2
---
body
`)
	assert.Contains(t, errs, "unexpected 10-K item value: 1A")
}

func TestValidateContentBadFilingType(t *testing.T) {
	errs := ValidateContent(`---
ticker: ACME
company_name: Acme Corp
cik: "123"
filing_date: "2024-01-15"
filing_type: 6-K
accession_number: acc-1
---
body
`)
	assert.Contains(t, errs, `invalid filing_type: "6-K" (expected 8-K or 10-K)`)
}

func TestValidateContentBadDate(t *testing.T) {
	errs := ValidateContent(`---
ticker: ACME
company_name: Acme Corp
cik: "123"
filing_date: "01/15/2024"
filing_type: 8-K
item: "1.05"
accession_number: acc-1
---
body
`)
	assert.Contains(t, errs, `filing_date "01/15/2024" does not match YYYY-MM-DD`)
}

func TestValidateContentNoFrontmatter(t *testing.T) {
	errs := ValidateContent("just a markdown file\n")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing YAML frontmatter")

	errs = ValidateContent("---\nticker: ACME\nno closing delimiter\n")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "no closing ---")
}

func TestValidateTree(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("8K/2024/Q1/0000012345_2024-01-15_8K.md", valid8KRecord)
	write("10K/2024/Q2/0000067890_2024-04-02_10K.md", valid10KRecord)
	write("8K/2024/Q1/broken.md", "no frontmatter\n")
	write("README.md", "# not a record\n")

	violations, checked, err := ValidateTree(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, checked)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Path, "broken.md")
	assert.Contains(t, violations[0].String(), "missing YAML frontmatter")
}
