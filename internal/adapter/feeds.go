// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/cre-research/pkg/types"
)

// defaultFeedURLs lists the syndicated commercial real-estate news
// feeds the market adapter polls. Overridable through
// AdapterConfig.FeedURLs; tests point this at httptest servers.
var defaultFeedURLs = []string{
	"https://www.bisnow.com/feed",
	"https://commercialobserver.com/feed/",
	"https://www.globest.com/feed/",
}

const (
	defaultFeedTimeout = 5 * time.Second
	topItemsPerFeed    = 2
)

// crePhrases earn a scoring bonus on top of per-term hits: an item
// mentioning one of these is domain-relevant even when it shares few
// literal terms with the query.
var crePhrases = []string{
	"commercial real estate", "office space", "cap rate", "vacancy rate",
	"lease rate", "industrial space", "retail space", "net absorption",
}

// fetchNews pulls each configured feed with a bounded per-feed
// timeout, scores items against the query, and keeps the top 2 per
// feed source. A failed or timed-out feed costs a warning; the
// remaining feeds still contribute.
func fetchNews(ctx context.Context, client *http.Client, cfg types.AdapterConfig, query string) ([]types.ResearchRecord, []string) {
	urls := cfg.FeedURLs
	if len(urls) == 0 {
		urls = defaultFeedURLs
	}
	timeout := cfg.FeedTimeout
	if timeout <= 0 {
		timeout = defaultFeedTimeout
	}

	var records []types.ResearchRecord
	var warnings []string

	for _, feedURL := range urls {
		items, err := fetchFeed(ctx, client, feedURL, cfg.UserAgent, timeout)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("feed %s: %v", feedURL, err))
			continue
		}
		records = append(records, rankItems(items, query)...)
	}
	return records, warnings
}

// feedItem is one entry of a fetched feed, before scoring.
type feedItem struct {
	title   string
	link    string
	date    string
	summary string
	source  string
	score   int
}

// fetchFeed retrieves and parses one RSS or Atom feed.
func fetchFeed(ctx context.Context, client *http.Client, feedURL, userAgent string, timeout time.Duration) ([]feedItem, error) {
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	var doc feedDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	return doc.items(), nil
}

// rankItems scores feed items against the query and returns the top
// entries for this feed as news records, best first.
func rankItems(items []feedItem, query string) []types.ResearchRecord {
	terms := strings.Fields(strings.ToLower(query))

	for i := range items {
		items[i].score = scoreItem(items[i], terms)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	if len(items) > topItemsPerFeed {
		items = items[:topItemsPerFeed]
	}

	var records []types.ResearchRecord
	for _, it := range items {
		if it.title == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			Title:   it.title,
			Date:    it.date,
			Source:  it.source,
			Link:    orPlaceholder(it.link),
			Summary: truncate(it.summary, 400),
			Kind:    types.KindNewsArticle,
		})
	}
	return records
}

// scoreItem counts distinct query-term substring hits in the item's
// title and summary (+1 each) plus a bonus for each domain phrase
// present (+2 each).
func scoreItem(it feedItem, terms []string) int {
	text := strings.ToLower(it.title + " " + it.summary)

	score := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			score++
		}
	}
	for _, phrase := range crePhrases {
		if strings.Contains(text, phrase) {
			score += 2
		}
	}
	return score
}

// feedDocument decodes either an RSS <rss><channel> document or an
// Atom <feed> document; unmatched elements stay zero.
type feedDocument struct {
	XMLName xml.Name

	// RSS 2.0 layout.
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`

	// Atom layout.
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Updated string `xml:"updated"`
	Summary string `xml:"summary"`
}

// items flattens whichever layout decoded into feedItems.
func (d feedDocument) items() []feedItem {
	if d.XMLName.Local == "feed" {
		source := strings.TrimSpace(d.Title)
		out := make([]feedItem, 0, len(d.Entries))
		for _, e := range d.Entries {
			out = append(out, feedItem{
				title:   strings.TrimSpace(e.Title),
				link:    e.Link.Href,
				date:    e.Updated,
				summary: strings.TrimSpace(e.Summary),
				source:  source,
			})
		}
		return out
	}

	source := strings.TrimSpace(d.Channel.Title)
	out := make([]feedItem, 0, len(d.Channel.Items))
	for _, it := range d.Channel.Items {
		out = append(out, feedItem{
			title:   strings.TrimSpace(it.Title),
			link:    it.Link,
			date:    it.PubDate,
			summary: strings.TrimSpace(it.Description),
			source:  source,
		})
	}
	return out
}
