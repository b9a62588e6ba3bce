// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FormType identifies the SEC form a filing was submitted on.
type FormType string

const (
	Form8K  FormType = "8-K"
	Form10K FormType = "10-K"
)

// Compact returns the form type without the hyphen, as used in output
// directory and file names (data/8K/..., data/10K/...).
func (t FormType) Compact() string {
	switch t {
	case Form8K:
		return "8K"
	case Form10K:
		return "10K"
	}
	return string(t)
}

// ParseFormType maps a CLI string to a FormType. It accepts both the
// canonical ("8-K") and compact ("8K") spellings.
func ParseFormType(s string) (FormType, bool) {
	switch s {
	case "8-K", "8K", "8k":
		return Form8K, true
	case "10-K", "10K", "10k":
		return Form10K, true
	}
	return "", false
}

// Filing holds provider metadata for one EDGAR filing submission.
type Filing struct {
	// AccessionNumber is the SEC identifier for the submission
	// (e.g. "0001234567-24-000123").
	AccessionNumber string `json:"accession_number" yaml:"accession_number"`

	// CIK is the Central Index Key of the filer, without leading zeros.
	CIK string `json:"cik" yaml:"cik"`

	// Ticker is the exchange symbol, if known.
	Ticker string `json:"ticker,omitempty" yaml:"ticker,omitempty"`

	// CompanyName is the registrant name as reported by the provider.
	CompanyName string `json:"company_name,omitempty" yaml:"company_name,omitempty"`

	// FormType is the SEC form: 8-K or 10-K.
	FormType FormType `json:"form_type" yaml:"form_type"`

	// FilingDate is the filing date in YYYY-MM-DD form.
	FilingDate string `json:"filing_date" yaml:"filing_date"`

	// DocumentURL points to the primary filing document.
	DocumentURL string `json:"document_url,omitempty" yaml:"document_url,omitempty"`

	// SourceLink is the URL recorded in output frontmatter. Falls back to
	// DocumentURL when the provider does not supply a separate detail link.
	SourceLink string `json:"source_link,omitempty" yaml:"source_link,omitempty"`

	// Document holds the raw filing content when the provider returns it
	// inline; empty means the document must be fetched from DocumentURL.
	Document string `json:"-" yaml:"-"`
}

// Link returns the frontmatter source link for the filing.
func (f Filing) Link() string {
	if f.SourceLink != "" {
		return f.SourceLink
	}
	return f.DocumentURL
}

// Section is one extracted disclosure item from a filing document.
type Section struct {
	// Code is the item code: "1.05", "106", or "407j".
	Code string `json:"code" yaml:"code"`

	// Title is the display heading for the item
	// (e.g. "Item 1.05. Material Cybersecurity Incidents").
	Title string `json:"title" yaml:"title"`

	// Markdown is the converted section body.
	Markdown string `json:"markdown" yaml:"markdown"`
}
