// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// Provider endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	listingsAPIBase  = "https://api.commercialsearch.example.com/v2/listings"
	analyticsAPIBase = "https://api.cre-analytics.example.com/v1/reports"
)

// Leasing queries a property-listing source, then a market-analytics
// source when listings alone are thin.
type Leasing struct {
	Client   *http.Client
	Sessions session.Store
	Cfg      types.AdapterConfig
}

func (a *Leasing) Name() string          { return "Leasing Research" }
func (a *Leasing) Topic() types.Category { return types.CategoryLeasing }

func (a *Leasing) Fetch(ctx context.Context, query, sessionID string) (res Result) {
	defer guard(a.Sessions, sessionID, a.Name(), &res)

	a.Sessions.Log(sessionID, "starting leasing search", a.Name())

	listings, err := a.searchListings(ctx, query)
	if err != nil {
		res.warnf("%s: listings: %v", a.Name(), err)
	}
	res.Records = append(res.Records, listings...)

	if len(res.Records) < minRecords(a.Cfg) {
		reports, err := a.searchAnalytics(ctx, query)
		if err != nil {
			res.warnf("%s: analytics: %v", a.Name(), err)
		}
		res.Records = append(res.Records, reports...)
	}

	if len(res.Records) == 0 {
		res.Records = append(res.Records, syntheticRecord(a.Name(), query))
	}
	return res
}

// searchListings queries the property-listing API.
func (a *Leasing) searchListings(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	params := url.Values{
		"query": {query},
		"limit": {fmt.Sprintf("%d", maxRecords(a.Cfg))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("listings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings API returned HTTP %d", resp.StatusCode)
	}

	var lr listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("parsing listings response: %w", err)
	}

	var records []types.ResearchRecord
	for _, l := range lr.Listings {
		if l.Address == "" {
			continue
		}
		summary := fmt.Sprintf("%s listing: %s sq ft at %s/sq ft/yr, %s.",
			l.PropertyType, l.SquareFeet, l.AskingRent, l.Status)
		records = append(records, types.ResearchRecord{
			Title:   fmt.Sprintf("%s — %s", l.Address, l.PropertyType),
			Date:    l.ListedDate,
			Source:  "Commercial Listings",
			Link:    orPlaceholder(l.URL),
			Summary: summary,
			Kind:    types.KindMarketReport,
		})
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// searchAnalytics queries the market-analytics report API.
func (a *Leasing) searchAnalytics(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	params := url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", maxRecords(a.Cfg))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, analyticsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("analytics request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics API returned HTTP %d", resp.StatusCode)
	}

	var ar analyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing analytics response: %w", err)
	}

	var records []types.ResearchRecord
	for _, rep := range ar.Reports {
		if rep.Title == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			Title:   rep.Title,
			Date:    rep.Published,
			Source:  "CRE Analytics",
			Link:    orPlaceholder(rep.URL),
			Summary: truncate(rep.Abstract, 400),
			Kind:    types.KindMarketReport,
		})
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// Listings API JSON structures.
type listingsResponse struct {
	Listings []listingEntry `json:"listings"`
}

type listingEntry struct {
	Address      string `json:"address"`
	PropertyType string `json:"property_type"`
	SquareFeet   string `json:"square_feet"`
	AskingRent   string `json:"asking_rent"`
	Status       string `json:"status"`
	ListedDate   string `json:"listed_date"`
	URL          string `json:"url"`
}

// Analytics API JSON structures.
type analyticsResponse struct {
	Reports []analyticsReport `json:"reports"`
}

type analyticsReport struct {
	Title     string `json:"title"`
	Published string `json:"published"`
	Abstract  string `json:"abstract"`
	URL       string `json:"url"`
}
