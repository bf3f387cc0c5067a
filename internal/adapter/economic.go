// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/pkg/types"
)

// fredAPIBase is the economic-data series endpoint. Declared as a var
// so tests can substitute an httptest server.
var fredAPIBase = "https://api.stlouisfed.org/fred/series/observations"

// indicatorSeries maps query substrings to economic-data series. The
// first matching row wins; the final row is the catch-all for any
// market query containing none of the phrases.
var indicatorSeries = []struct {
	phrase   string
	seriesID string
	label    string
}{
	{"interest rate", "FEDFUNDS", "Federal Funds Effective Rate"},
	{"mortgage", "MORTGAGE30US", "30-Year Fixed Mortgage Average"},
	{"inflation", "CPIAUCSL", "Consumer Price Index"},
	{"construction", "TLCOMCONS", "Total Commercial Construction Spending"},
	{"employment", "UNRATE", "Unemployment Rate"},
	{"gdp", "GDP", "Gross Domestic Product"},
	{"", "COMREPUSQ159N", "Commercial Real Estate Prices for United States"},
}

// observationWindow is how many recent observations feed the trend
// computation.
const observationWindow = 12

// fetchIndicators resolves the query to an indicator series, fetches
// its recent observations, and returns one economic-data record with
// a coarse trend label.
func fetchIndicators(ctx context.Context, client *http.Client, cfg types.AdapterConfig, query string) ([]types.ResearchRecord, error) {
	if cfg.FREDAPIKey == "" {
		return nil, fmt.Errorf("no FRED API key configured")
	}

	seriesID, label := resolveSeries(query)

	params := url.Values{
		"series_id":  {seriesID},
		"api_key":    {cfg.FREDAPIKey},
		"file_type":  {"json"},
		"sort_order": {"desc"},
		"limit":      {strconv.Itoa(observationWindow)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fredAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("series request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("series API returned HTTP %d", resp.StatusCode)
	}

	var fr fredResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("parsing series response: %w", err)
	}

	values, dates := parseObservations(fr.Observations)
	if len(values) == 0 {
		return nil, fmt.Errorf("series %s returned no usable observations", seriesID)
	}

	// Observations arrive newest first.
	latest := values[0]
	oldest := values[len(values)-1]
	trend := trendLabel(latest, oldest)

	record := types.ResearchRecord{
		Title:   fmt.Sprintf("%s (%s)", label, seriesID),
		Date:    dates[0],
		Source:  "FRED",
		Link:    "https://fred.stlouisfed.org/series/" + seriesID,
		Summary: fmt.Sprintf("Latest value %.2f as of %s; the series has %s over the last %d observations.", latest, dates[0], trend, len(values)),
		Kind:    types.KindEconomicData,
	}
	return []types.ResearchRecord{record}, nil
}

// resolveSeries picks the indicator series for a query by substring
// match against the phrase table.
func resolveSeries(query string) (seriesID, label string) {
	q := strings.ToLower(query)
	for _, row := range indicatorSeries {
		if row.phrase == "" || strings.Contains(q, row.phrase) {
			return row.seriesID, row.label
		}
	}
	// Unreachable: the table ends with a catch-all row.
	last := indicatorSeries[len(indicatorSeries)-1]
	return last.seriesID, last.label
}

// parseObservations extracts numeric values and their dates, skipping
// the "." placeholders FRED uses for missing data.
func parseObservations(obs []fredObservation) ([]float64, []string) {
	var values []float64
	var dates []string
	for _, o := range obs {
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
		dates = append(dates, o.Date)
	}
	return values, dates
}

// trendLabel computes the coarse trend from percent change between
// the most recent observation and the oldest of the window:
// above 10% either way is "significantly", above 2% is a plain
// increase or decrease, anything else is stable.
func trendLabel(latest, oldest float64) string {
	if oldest == 0 {
		return "remained stable"
	}
	change := (latest - oldest) / oldest * 100

	switch {
	case change > 10:
		return "significantly increased"
	case change > 2:
		return "increased"
	case change < -10:
		return "significantly decreased"
	case change < -2:
		return "decreased"
	default:
		return "remained stable"
	}
}

// FRED API JSON structures.
type fredResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}
