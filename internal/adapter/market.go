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

// trendsAPIBase is the search-trends service endpoint. Declared as a
// var so tests can substitute an httptest server.
var trendsAPIBase = "https://api.searchtrends.example.com/v1/interest"

// Market queries a search-trends source, a news-feed aggregator, and
// an economic-indicator source. Unlike the two-stage adapters, all
// three sub-sources contribute; each failure is tolerated on its own.
type Market struct {
	Client   *http.Client
	Sessions session.Store
	Cfg      types.AdapterConfig
}

func (a *Market) Name() string          { return "Market Research" }
func (a *Market) Topic() types.Category { return types.CategoryMarket }

func (a *Market) Fetch(ctx context.Context, query, sessionID string) (res Result) {
	defer guard(a.Sessions, sessionID, a.Name(), &res)

	a.Sessions.Log(sessionID, "starting market search", a.Name())

	trends, err := a.searchTrends(ctx, query)
	if err != nil {
		res.warnf("%s: trends: %v", a.Name(), err)
	}
	res.Records = append(res.Records, trends...)

	news, warnings := fetchNews(ctx, a.Client, a.Cfg, query)
	res.Warnings = append(res.Warnings, warnings...)
	res.Records = append(res.Records, news...)

	econ, err := fetchIndicators(ctx, a.Client, a.Cfg, query)
	if err != nil {
		res.warnf("%s: economic data: %v", a.Name(), err)
	}
	res.Records = append(res.Records, econ...)

	if len(res.Records) == 0 {
		res.Records = append(res.Records, syntheticRecord(a.Name(), query))
	}
	return res
}

// searchTrends queries the search-trends service for interest-over-
// time data on the query terms.
func (a *Market) searchTrends(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	if a.Cfg.TrendsAPIKey == "" {
		return nil, fmt.Errorf("no trends API key configured")
	}

	params := url.Values{
		"q":       {query},
		"api_key": {a.Cfg.TrendsAPIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trendsAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("trends request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends API returned HTTP %d", resp.StatusCode)
	}

	var tr trendsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing trends response: %w", err)
	}

	var records []types.ResearchRecord
	for _, topic := range tr.Topics {
		if topic.Term == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			Title:   fmt.Sprintf("Search interest: %s", topic.Term),
			Date:    topic.Updated,
			Source:  "Search Trends",
			Link:    "#",
			Summary: fmt.Sprintf("Relative search interest for %q is %d/100 over the last 12 months (%s).", topic.Term, topic.Interest, topic.Direction),
			Kind:    types.KindMarketReport,
		})
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// Trends service JSON structures.
type trendsResponse struct {
	Topics []trendTopic `json:"topics"`
}

type trendTopic struct {
	Term      string `json:"term"`
	Interest  int    `json:"interest"`
	Direction string `json:"direction"`
	Updated   string `json:"updated"`
}
