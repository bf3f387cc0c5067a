// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// Provider endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	wikiSearchBase = "https://en.wikipedia.org/w/rest.php/v1/search/page"
	scrapeBase     = "https://www.investopedia.com/terms/c/commercialrealestate.asp"
)

// KnowledgeSearcher is the local knowledge-base lookup the fallback
// adapter tries first. *knowledgebase.Store implements it.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) ([]types.ResearchRecord, error)
}

// Fallback supplies general-purpose background evidence and runs for
// every query regardless of detected category. It tries the local
// knowledge base, then web search, then a scraping target, and
// finally a canned informational record.
type Fallback struct {
	Client    *http.Client
	Sessions  session.Store
	Cfg       types.AdapterConfig
	Knowledge KnowledgeSearcher
}

func (a *Fallback) Name() string          { return "General Research" }
func (a *Fallback) Topic() types.Category { return types.CategoryGeneral }

func (a *Fallback) Fetch(ctx context.Context, query, sessionID string) (res Result) {
	defer guard(a.Sessions, sessionID, a.Name(), &res)

	a.Sessions.Log(sessionID, "starting general research", a.Name())

	if a.Knowledge != nil {
		kb, err := a.Knowledge.Search(ctx, query)
		if err != nil {
			res.warnf("%s: knowledge base: %v", a.Name(), err)
		}
		res.Records = append(res.Records, kb...)
	}

	if len(res.Records) < minRecords(a.Cfg) {
		web, err := a.searchWeb(ctx, query)
		if err != nil {
			res.warnf("%s: web search: %v", a.Name(), err)
		}
		res.Records = append(res.Records, web...)
	}

	if len(res.Records) == 0 {
		scraped, err := a.scrape(ctx)
		if err != nil {
			res.warnf("%s: scrape: %v", a.Name(), err)
		} else {
			res.Records = append(res.Records, scraped...)
		}
	}

	if len(res.Records) == 0 {
		res.Records = append(res.Records, cannedRecord(query))
	}
	return res
}

// searchWeb queries the Wikipedia page-search API.
func (a *Fallback) searchWeb(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	params := url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", maxRecords(a.Cfg))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wikiSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var wr wikiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	var records []types.ResearchRecord
	for _, page := range wr.Pages {
		if page.Title == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			Title:   page.Title,
			Authors: "Wikipedia contributors",
			Date:    time.Now().Format("2006-01-02"),
			Source:  "Wikipedia",
			Link:    "https://en.wikipedia.org/wiki/" + url.PathEscape(page.Key),
			Summary: truncate(stripTags(page.Excerpt), 400),
			Kind:    types.KindWebContent,
		})
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// paragraphRe pulls paragraph bodies out of scraped HTML.
var paragraphRe = regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`)

// tagRe strips any remaining markup from extracted text.
var tagRe = regexp.MustCompile(`<[^>]+>`)

// scrape fetches the configured background page and extracts the
// first substantial paragraphs as one web-content record.
func (a *Fallback) scrape(ctx context.Context) ([]types.ResearchRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scrapeBase, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape target returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("reading scrape body: %w", err)
	}
	text := extractParagraphs(string(body))
	if text == "" {
		return nil, fmt.Errorf("no extractable paragraphs")
	}

	return []types.ResearchRecord{{
		Title:   "Commercial Real Estate Overview",
		Date:    time.Now().Format("2006-01-02"),
		Source:  "Web Content",
		Link:    scrapeBase,
		Summary: truncate(text, 400),
		Kind:    types.KindWebContent,
	}}, nil
}

// extractParagraphs joins the first few paragraph bodies of an HTML
// document, tags stripped.
func extractParagraphs(html string) string {
	matches := paragraphRe.FindAllStringSubmatch(html, 3)
	var parts []string
	for _, m := range matches {
		p := strings.TrimSpace(stripTags(m[1]))
		if len(p) > 40 {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// cannedRecord is the last-resort informational record when every
// fallback provider failed.
func cannedRecord(query string) types.ResearchRecord {
	return types.ResearchRecord{
		Title:   "Commercial Real Estate Research Overview",
		Authors: "",
		Date:    "n.d.",
		Source:  "General Research",
		Link:    "#",
		Summary: fmt.Sprintf("Commercial real estate research on %q spans market conditions, leasing activity, sustainability practice, and economic context. No external source was reachable, so this answer draws on general knowledge only.", query),
		Kind:    types.KindWebContent,
	}
}

// Wikipedia search JSON structures.
type wikiSearchResponse struct {
	Pages []wikiPage `json:"pages"`
}

type wikiPage struct {
	Title   string `json:"title"`
	Key     string `json:"key"`
	Excerpt string `json:"excerpt"`
}
