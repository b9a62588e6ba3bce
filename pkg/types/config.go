package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. The SEC
	// requires a contact address (e.g. "secwatch admin@example.com").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings for the filings provider.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// Name selects the provider: "edgar" (public, rate-limited) or
	// "datamule" (keyed).
	Name string `json:"name" yaml:"name"`

	// APIKey authenticates against the keyed provider. Empty falls back to
	// the public EDGAR endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond caps the request rate against SEC hosts (default 8;
	// the SEC allows roughly 10).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries bounds retry attempts on rate-limited or failed requests
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractConfig holds settings for the section extractor.
type ExtractConfig struct {
	// MinSectionChars rejects extracted spans whose trimmed text is shorter
	// than this, filtering table-of-contents mentions (default 100).
	MinSectionChars int `json:"min_section_chars" yaml:"min_section_chars"`

	// ItemsFile optionally points to a YAML file overriding the built-in
	// item synonym pattern sets.
	ItemsFile string `json:"items_file,omitempty" yaml:"items_file,omitempty"`
}

// OutputConfig holds settings for the dataset writer.
type OutputConfig struct {
	// DataDir is the root of the dated output tree (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ProcessedFile is the flat list of already-ingested accession numbers.
	// Defaults to <DataDir>/processed_filings.txt.
	ProcessedFile string `json:"processed_file,omitempty" yaml:"processed_file,omitempty"`

	// SplitItems writes one file per extracted 10-K item, with the item code
	// suffixed to the file name, instead of one combined file per filing.
	SplitItems bool `json:"split_items" yaml:"split_items"`
}

// PipelineConfig groups all stage configurations for an ingestion run.
type PipelineConfig struct {
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}
