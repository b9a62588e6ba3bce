// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/secwatch/internal/httputil"
	"github.com/pdiddy/secwatch/pkg/types"
)

// EDGAR endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	edgarSearchBase      = "https://efts.sec.gov/LATEST/search-index"
	edgarTickersURL      = "https://www.sec.gov/files/company_tickers.json"
	edgarSubmissionsBase = "https://data.sec.gov/submissions"
	edgarArchivesBase    = "https://www.sec.gov/Archives"
)

const (
	edgarPageSize = 100
	// edgarMaxPages bounds full-text search pagination; the API caps result
	// windows anyway.
	edgarMaxPages = 100

	defaultRequestsPerSecond = 8
)

// EdgarProvider queries the public SEC EDGAR endpoints. The SEC requires a
// descriptive User-Agent with a contact address and fair-access request
// rates, enforced here with a token-bucket limiter shared across all
// endpoints.
type EdgarProvider struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int

	limiter *rate.Limiter
}

// NewEdgar returns a provider against the public EDGAR endpoints.
func NewEdgar(cfg types.ProviderConfig, client *http.Client) *EdgarProvider {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return &EdgarProvider{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)),
	}
}

// Name returns the provider identifier.
func (p *EdgarProvider) Name() string { return "edgar" }

// Filings lists filings matching the query. With tickers set it walks each
// company's submissions feed; otherwise it pages through full-text search.
func (p *EdgarProvider) Filings(ctx context.Context, query Query) ([]types.Filing, error) {
	if len(query.Tickers) > 0 {
		return p.watchlistFilings(ctx, query)
	}
	return p.searchFilings(ctx, query)
}

// edgarSearchResponse is the subset of the full-text search payload we use.
type edgarSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			// ID is "<accession>:<primary document file name>".
			ID     string `json:"_id"`
			Source struct {
				CIKs         []string `json:"ciks"`
				DisplayNames []string `json:"display_names"`
				FileDate     string   `json:"file_date"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (p *EdgarProvider) searchFilings(ctx context.Context, query Query) ([]types.Filing, error) {
	var filings []types.Filing
	seen := make(map[string]bool)

	for page := 0; page < edgarMaxPages; page++ {
		params := url.Values{
			"q":     {searchQuery(query.FormType)},
			"forms": {string(query.FormType)},
			"from":  {strconv.Itoa(page * edgarPageSize)},
			"size":  {strconv.Itoa(edgarPageSize)},
		}
		if query.StartDate != "" {
			params.Set("dateRange", "custom")
			params.Set("startdt", query.StartDate)
		}
		if query.EndDate != "" {
			params.Set("dateRange", "custom")
			params.Set("enddt", query.EndDate)
		}

		var resp edgarSearchResponse
		if err := p.getJSON(ctx, edgarSearchBase+"?"+params.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("EDGAR full-text search: %w", err)
		}

		for _, hit := range resp.Hits.Hits {
			accession, document, ok := strings.Cut(hit.ID, ":")
			if !ok || seen[accession] {
				continue
			}
			seen[accession] = true

			f := types.Filing{
				AccessionNumber: accession,
				FormType:        query.FormType,
				FilingDate:      hit.Source.FileDate,
			}
			if len(hit.Source.CIKs) > 0 {
				f.CIK = hit.Source.CIKs[0]
			}
			if len(hit.Source.DisplayNames) > 0 {
				f.CompanyName, f.Ticker = parseDisplayName(hit.Source.DisplayNames[0])
			}
			f.DocumentURL = archiveURL(f.CIK, accession, document)
			filings = append(filings, f)
		}

		if (page+1)*edgarPageSize >= resp.Hits.Total.Value || len(resp.Hits.Hits) == 0 {
			break
		}
	}
	return filings, nil
}

// searchQuery returns the full-text phrase used to pre-filter filings to
// cybersecurity disclosures; the extractor does the authoritative check.
func searchQuery(form types.FormType) string {
	if form == types.Form10K {
		return `"Item 1C. Cybersecurity"`
	}
	return `"Material Cybersecurity Incidents"`
}

// edgarSubmissions is the subset of the submissions feed we use. The
// recent block is column-oriented: parallel arrays indexed together.
type edgarSubmissions struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

func (p *EdgarProvider) watchlistFilings(ctx context.Context, query Query) ([]types.Filing, error) {
	ciks, err := p.resolveTickers(ctx, query.Tickers)
	if err != nil {
		return nil, err
	}

	var filings []types.Filing
	for _, ticker := range query.Tickers {
		cik, ok := ciks[strings.ToUpper(ticker)]
		if !ok {
			return nil, fmt.Errorf("unknown ticker %q", ticker)
		}

		var sub edgarSubmissions
		u := fmt.Sprintf("%s/CIK%010d.json", edgarSubmissionsBase, cik)
		if err := p.getJSON(ctx, u, &sub); err != nil {
			return nil, fmt.Errorf("EDGAR submissions for %s: %w", ticker, err)
		}

		recent := sub.Filings.Recent
		for i, form := range recent.Form {
			if form != string(query.FormType) {
				continue
			}
			date := recent.FilingDate[i]
			if (query.StartDate != "" && date < query.StartDate) ||
				(query.EndDate != "" && date > query.EndDate) {
				continue
			}
			cikStr := strconv.Itoa(cik)
			filings = append(filings, types.Filing{
				AccessionNumber: recent.AccessionNumber[i],
				CIK:             cikStr,
				Ticker:          strings.ToUpper(ticker),
				CompanyName:     sub.Name,
				FormType:        query.FormType,
				FilingDate:      date,
				DocumentURL:     archiveURL(cikStr, recent.AccessionNumber[i], recent.PrimaryDocument[i]),
			})
		}
	}
	return filings, nil
}

// resolveTickers maps upper-cased tickers to CIK numbers using the SEC's
// company ticker file.
func (p *EdgarProvider) resolveTickers(ctx context.Context, tickers []string) (map[string]int, error) {
	var table map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
	}
	if err := p.getJSON(ctx, edgarTickersURL, &table); err != nil {
		return nil, fmt.Errorf("fetching company tickers: %w", err)
	}

	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[strings.ToUpper(t)] = true
	}
	resolved := make(map[string]int, len(tickers))
	for _, entry := range table {
		if t := strings.ToUpper(entry.Ticker); want[t] {
			resolved[t] = entry.CIK
		}
	}
	return resolved, nil
}

// Document fetches the filing's primary document from the Archives.
func (p *EdgarProvider) Document(ctx context.Context, filing types.Filing) (string, error) {
	if filing.DocumentURL == "" {
		return "", fmt.Errorf("filing %s has no document URL", filing.AccessionNumber)
	}

	resp, err := p.get(ctx, filing.DocumentURL)
	if err != nil {
		return "", fmt.Errorf("fetching document %s: %w", filing.DocumentURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document %s returned HTTP %d", filing.DocumentURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", filing.DocumentURL, err)
	}
	return string(body), nil
}

func (p *EdgarProvider) get(ctx context.Context, u string) (*http.Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	return httputil.DoWithRetry(ctx, p.Client, req, p.MaxRetries)
}

func (p *EdgarProvider) getJSON(ctx context.Context, u string, out any) error {
	resp, err := p.get(ctx, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// archiveURL builds the Archives path to a filing document. Accession
// numbers are stripped of dashes and CIKs of leading zeros in the path.
func archiveURL(cik, accession, document string) string {
	if cik == "" || accession == "" || document == "" {
		return ""
	}
	return fmt.Sprintf("%s/edgar/data/%s/%s/%s",
		edgarArchivesBase,
		strings.TrimLeft(cik, "0"),
		strings.ReplaceAll(accession, "-", ""),
		document)
}

// displayNameRe matches EDGAR display names like
// "Acme Corp  (ACME)  (CIK 0000012345)".
var displayNameRe = regexp.MustCompile(`^(.*?)\s*\(([A-Z.\-]+)\)\s*\(CIK`)

func parseDisplayName(name string) (company, ticker string) {
	if m := displayNameRe.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	// No ticker segment; strip a trailing CIK annotation if present.
	if i := strings.Index(name, "(CIK"); i >= 0 {
		return strings.TrimSpace(name[:i]), ""
	}
	return strings.TrimSpace(name), ""
}
