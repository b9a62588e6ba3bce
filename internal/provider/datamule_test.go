// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/secwatch/pkg/types"
)

func testDatamule() *DatamuleProvider {
	return NewDatamule(types.ProviderConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "secwatch-test admin@example.com",
		},
		APIKey: "test-key",
	}, &http.Client{Timeout: 5 * time.Second})
}

func TestDatamuleFilings(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{
				"filings": [{
					"accession_number": "0000012345-24-000001",
					"cik": "0000012345",
					"ticker": "ACME",
					"name": "Acme Corp",
					"filing_type": "8-K",
					"date": "2024-01-15",
					"source_link": "https://www.sec.gov/Archives/acme-8k.htm",
					"content": "<html><body>Item 1.05</body></html>"
				}],
				"next_page": 2
			}`)
		default:
			fmt.Fprint(w, `{
				"filings": [{
					"accession_number": "0000067890-24-000007",
					"cik": "0000067890",
					"ticker": "BETA",
					"name": "Beta Industries",
					"filing_type": "10-K",
					"date": "2024-02-01",
					"source_link": "https://www.sec.gov/Archives/beta-10k.htm"
				}],
				"next_page": 0
			}`)
		}
	}))
	defer srv.Close()

	oldBase := datamuleFilingsBase
	datamuleFilingsBase = srv.URL
	defer func() { datamuleFilingsBase = oldBase }()

	filings, err := testDatamule().Filings(context.Background(), Query{
		FormType:  types.Form8K,
		StartDate: "2024-01-01",
		EndDate:   "2024-03-01",
	})
	require.NoError(t, err)
	require.Len(t, filings, 2)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "0000012345-24-000001", filings[0].AccessionNumber)
	assert.Equal(t, types.Form8K, filings[0].FormType)
	assert.Contains(t, filings[0].Document, "Item 1.05")
	assert.Equal(t, types.Form10K, filings[1].FormType)
	assert.Empty(t, filings[1].Document)
}

func TestDatamuleRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	oldBase := datamuleFilingsBase
	datamuleFilingsBase = srv.URL
	defer func() { datamuleFilingsBase = oldBase }()

	_, err := testDatamule().Filings(context.Background(), Query{FormType: types.Form8K})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestDatamuleDocumentInline(t *testing.T) {
	doc, err := testDatamule().Document(context.Background(), types.Filing{
		AccessionNumber: "acc-1",
		Document:        "<html>inline</html>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<html>inline</html>", doc)
}

func TestDatamuleDocumentFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>fetched</html>")
	}))
	defer srv.Close()

	doc, err := testDatamule().Document(context.Background(), types.Filing{
		AccessionNumber: "acc-1",
		DocumentURL:     srv.URL + "/doc.htm",
	})
	require.NoError(t, err)
	assert.Equal(t, "<html>fetched</html>", doc)
}

func TestNewSelectsProvider(t *testing.T) {
	p, err := New(types.ProviderConfig{Name: "edgar"})
	require.NoError(t, err)
	assert.Equal(t, "edgar", p.Name())

	// No key falls back to the public provider.
	p, err = New(types.ProviderConfig{Name: "datamule"})
	require.NoError(t, err)
	assert.Equal(t, "edgar", p.Name())

	p, err = New(types.ProviderConfig{Name: "datamule", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "datamule", p.Name())

	_, err = New(types.ProviderConfig{Name: "bogus"})
	assert.Error(t, err)
}
