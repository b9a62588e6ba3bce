// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider implements filing sources. Each provider lists filings
// for a form type and date range and fetches the primary document.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/secwatch/pkg/types"
)

// Query describes a filing listing request.
type Query struct {
	FormType  types.FormType
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
	// Tickers, when set, restricts the listing to these companies
	// (watchlist mode).
	Tickers []string
}

// Provider lists filings and retrieves their primary documents.
type Provider interface {
	Name() string
	Filings(ctx context.Context, query Query) ([]types.Filing, error)
	// Document returns the primary document body. Providers that deliver
	// content inline return it without a network round trip.
	Document(ctx context.Context, filing types.Filing) (string, error)
}

// New returns the provider named in cfg. An unknown name is an error;
// datamule without an API key falls back to the public edgar provider.
func New(cfg types.ProviderConfig) (Provider, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Name {
	case "", "edgar":
		return NewEdgar(cfg, client), nil
	case "datamule":
		if cfg.APIKey == "" {
			return NewEdgar(cfg, client), nil
		}
		return NewDatamule(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected edgar or datamule)", cfg.Name)
	}
}
