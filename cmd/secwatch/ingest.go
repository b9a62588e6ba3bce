// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/secwatch/internal/catalog"
	"github.com/pdiddy/secwatch/internal/extract"
	"github.com/pdiddy/secwatch/internal/pipeline"
	"github.com/pdiddy/secwatch/internal/provider"
	"github.com/pdiddy/secwatch/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "secwatch/0.1 (contact: set --user-agent or SEC_USER_AGENT)"
	dateLayout       = "2006-01-02"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest cybersecurity disclosures from new SEC filings",
	Long: `Ingest lists 8-K and/or 10-K filings in a date window, extracts the
cybersecurity disclosure items from each, and writes one Markdown record
per filing into the dated data tree. Filings already in the processed
list are skipped, so repeated runs are incremental.

The date window defaults to yesterday through today, matching a daily
monitoring schedule.`,
	RunE: runIngest,
}

func init() {
	addIngestFlags(ingestCmd)
	ingestCmd.Flags().String("start-date", "", "window start, YYYY-MM-DD (default: yesterday)")
	ingestCmd.Flags().String("end-date", "", "window end, YYYY-MM-DD (default: today)")

	rootCmd.AddCommand(ingestCmd)
}

// addIngestFlags registers the flags shared by ingest and backfill.
func addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().String("filing-type", "both", "filing type to ingest: 8-K, 10-K, or both")
	cmd.Flags().String("output-dir", "data", "root of the output data tree")
	cmd.Flags().String("provider", "", "filing provider: edgar or datamule (default edgar)")
	cmd.Flags().String("watchlist", "", "file of tickers (one per line) to restrict ingestion to")
	cmd.Flags().String("items-config", "", "YAML file overriding the built-in item patterns")
	cmd.Flags().Int("min-section-chars", 0, "minimum extracted section length (default 100)")
	cmd.Flags().Bool("split-items", false, "write one file per 10-K item instead of a combined record")
	cmd.Flags().String("processed-file", "", "processed accessions file (default <output-dir>/processed_filings.txt)")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().String("user-agent", "", "User-Agent for SEC requests; the SEC requires a contact address")
}

func runIngest(cmd *cobra.Command, args []string) error {
	startDate, _ := cmd.Flags().GetString("start-date")
	endDate, _ := cmd.Flags().GetString("end-date")
	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -1).Format(dateLayout)
	}
	if endDate == "" {
		endDate = time.Now().Format(dateLayout)
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", d)
		}
	}
	if endDate < startDate {
		return fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}

	return ingestWindow(cmd, startDate, endDate)
}

// ingestWindow runs the pipeline over [startDate, endDate] for each
// requested form type.
func ingestWindow(cmd *cobra.Command, startDate, endDate string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	forms, err := requestedForms(cmd)
	if err != nil {
		return err
	}

	var tickers []string
	if watchlist, _ := cmd.Flags().GetString("watchlist"); watchlist != "" {
		if tickers, err = readWatchlist(watchlist); err != nil {
			return err
		}
	}

	specs, err := loadSpecs(cmd)
	if err != nil {
		return err
	}

	prov, err := provider.New(cfg.Provider)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(filepath.Join(cfg.Output.DataDir, "catalog.db"))
	if err != nil {
		return err
	}
	defer cat.Close()

	p := &pipeline.Pipeline{
		Provider: prov,
		Specs:    specs,
		Config:   cfg,
		Catalog:  cat,
	}

	failures := 0
	for _, form := range forms {
		query := provider.Query{
			FormType:  form,
			StartDate: startDate,
			EndDate:   endDate,
			Tickers:   tickers,
		}
		summary, err := p.Run(cmd.Context(), query, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			failures += summary.FetchFailed + summary.WriteFailed
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d filing(s) failed ingestion", failures)
	}
	return nil
}

// buildConfig assembles the pipeline configuration from flags, config file
// values, environment, and loaded secrets, in that order of precedence.
func buildConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent, _ := cmd.Flags().GetString("user-agent")
	if userAgent == "" {
		userAgent = viper.GetString("user_agent")
	}
	if userAgent == "" {
		userAgent = os.Getenv("SEC_USER_AGENT")
	}
	if userAgent == "" {
		userAgent = secretDefault("sec-user-agent", "")
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	providerName, _ := cmd.Flags().GetString("provider")
	if providerName == "" {
		providerName = viper.GetString("provider")
	}

	apiKey := os.Getenv("DATAMULE_API_KEY")
	if apiKey == "" {
		apiKey = secretDefault("datamule-api-key", "")
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	processedFile, _ := cmd.Flags().GetString("processed-file")
	splitItems, _ := cmd.Flags().GetBool("split-items")
	minChars, _ := cmd.Flags().GetInt("min-section-chars")
	itemsFile, _ := cmd.Flags().GetString("items-config")

	return types.PipelineConfig{
		Provider: types.ProviderConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: userAgent,
			},
			Name:              providerName,
			APIKey:            apiKey,
			RequestsPerSecond: viper.GetFloat64("requests_per_second"),
			MaxRetries:        viper.GetInt("max_retries"),
		},
		Extract: types.ExtractConfig{
			MinSectionChars: minChars,
			ItemsFile:       itemsFile,
		},
		Output: types.OutputConfig{
			DataDir:       outputDir,
			ProcessedFile: processedFile,
			SplitItems:    splitItems,
		},
	}, nil
}

func requestedForms(cmd *cobra.Command) ([]types.FormType, error) {
	filingType, _ := cmd.Flags().GetString("filing-type")
	switch strings.ToLower(filingType) {
	case "", "both":
		return []types.FormType{types.Form8K, types.Form10K}, nil
	}
	form, ok := types.ParseFormType(filingType)
	if !ok {
		return nil, fmt.Errorf("invalid filing type %q (expected 8-K, 10-K, or both)", filingType)
	}
	return []types.FormType{form}, nil
}

func loadSpecs(cmd *cobra.Command) ([]extract.ItemSpec, error) {
	itemsFile, _ := cmd.Flags().GetString("items-config")
	if itemsFile == "" {
		itemsFile = viper.GetString("items_config")
	}
	if itemsFile == "" {
		return extract.DefaultSpecs(), nil
	}
	return extract.LoadSpecs(itemsFile)
}

// readWatchlist loads tickers from a file, one per line; blank lines and
// #-comments are ignored.
func readWatchlist(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening watchlist %s: %w", path, err)
	}
	defer f.Close()

	var tickers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tickers = append(tickers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading watchlist %s: %w", path, err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("watchlist %s contains no tickers", path)
	}
	return tickers, nil
}
