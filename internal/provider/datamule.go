// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/secwatch/internal/httputil"
	"github.com/pdiddy/secwatch/pkg/types"
)

// datamuleFilingsBase is the keyed filings API endpoint. Declared as a var
// so tests can substitute an httptest server.
var datamuleFilingsBase = "https://api.datamule.xyz/v1/filings"

// datamuleMaxPages bounds pagination against a misbehaving cursor.
const datamuleMaxPages = 1000

// DatamuleProvider queries the keyed datamule API. Responses may carry the
// primary document inline, saving the Archives round trip.
type DatamuleProvider struct {
	Client     *http.Client
	APIKey     string
	UserAgent  string
	MaxRetries int
}

// NewDatamule returns a provider against the datamule API.
func NewDatamule(cfg types.ProviderConfig, client *http.Client) *DatamuleProvider {
	return &DatamuleProvider{
		Client:     client,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Name returns the provider identifier.
func (p *DatamuleProvider) Name() string { return "datamule" }

type datamuleResponse struct {
	Filings []struct {
		AccessionNumber string `json:"accession_number"`
		CIK             string `json:"cik"`
		Ticker          string `json:"ticker"`
		Name            string `json:"name"`
		FilingType      string `json:"filing_type"`
		Date            string `json:"date"`
		SourceLink      string `json:"source_link"`
		Content         string `json:"content,omitempty"`
	} `json:"filings"`
	NextPage int `json:"next_page"`
}

// Filings pages through the datamule filings listing.
func (p *DatamuleProvider) Filings(ctx context.Context, query Query) ([]types.Filing, error) {
	var filings []types.Filing
	page := 1

	for i := 0; i < datamuleMaxPages; i++ {
		params := url.Values{
			"filing_type": {string(query.FormType)},
			"page":        {strconv.Itoa(page)},
		}
		if query.StartDate != "" {
			params.Set("start_date", query.StartDate)
		}
		if query.EndDate != "" {
			params.Set("end_date", query.EndDate)
		}
		for _, t := range query.Tickers {
			params.Add("ticker", t)
		}

		resp, err := p.get(ctx, datamuleFilingsBase+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("datamule filings: %w", err)
		}

		var dr datamuleResponse
		err = func() error {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("datamule rejected the API key (HTTP 401)")
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("datamule returned HTTP %d", resp.StatusCode)
			}
			if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
				return fmt.Errorf("parsing datamule response: %w", err)
			}
			return nil
		}()
		if err != nil {
			return nil, err
		}

		for _, f := range dr.Filings {
			form, ok := types.ParseFormType(f.FilingType)
			if !ok {
				continue
			}
			filings = append(filings, types.Filing{
				AccessionNumber: f.AccessionNumber,
				CIK:             f.CIK,
				Ticker:          f.Ticker,
				CompanyName:     f.Name,
				FormType:        form,
				FilingDate:      f.Date,
				DocumentURL:     f.SourceLink,
				SourceLink:      f.SourceLink,
				Document:        f.Content,
			})
		}

		if dr.NextPage <= page {
			break
		}
		page = dr.NextPage
	}
	return filings, nil
}

// Document returns inline content when the listing carried it, otherwise
// fetches the source link.
func (p *DatamuleProvider) Document(ctx context.Context, filing types.Filing) (string, error) {
	if filing.Document != "" {
		return filing.Document, nil
	}
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

func (p *DatamuleProvider) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("User-Agent", p.UserAgent)
	return httputil.DoWithRetry(ctx, p.Client, req, p.MaxRetries)
}
