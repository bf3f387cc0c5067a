// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// Provider endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	openAlexSearchBase   = "https://api.openalex.org/works"
	certificationAPIBase = "https://api.gbig.org/v1/certifications"
)

// sustainabilityConcepts narrows OpenAlex results to
// sustainability-adjacent subject areas.
var sustainabilityConcepts = []string{
	"sustainability", "green building", "energy efficiency",
}

// Sustainability queries an academic-paper source filtered to
// sustainability-adjacent subjects, then a certification-data source.
type Sustainability struct {
	Client   *http.Client
	Sessions session.Store
	Cfg      types.AdapterConfig
}

func (a *Sustainability) Name() string          { return "Sustainability Research" }
func (a *Sustainability) Topic() types.Category { return types.CategorySustainability }

// Fetch runs the academic search, then the certification registry if
// results are below the threshold. Both failures together still
// produce one synthetic record.
func (a *Sustainability) Fetch(ctx context.Context, query, sessionID string) (res Result) {
	defer guard(a.Sessions, sessionID, a.Name(), &res)

	a.Sessions.Log(sessionID, "starting sustainability search", a.Name())

	papers, err := a.searchAcademic(ctx, query)
	if err != nil {
		res.warnf("%s: academic search: %v", a.Name(), err)
	}
	res.Records = append(res.Records, papers...)

	if len(res.Records) < minRecords(a.Cfg) {
		certs, err := a.searchCertifications(ctx, query)
		if err != nil {
			res.warnf("%s: certification registry: %v", a.Name(), err)
		}
		res.Records = append(res.Records, certs...)
	}

	if len(res.Records) == 0 {
		res.Records = append(res.Records, syntheticRecord(a.Name(), query))
	}
	return res
}

// searchAcademic queries the OpenAlex works endpoint with the query
// widened by the sustainability concept terms.
func (a *Sustainability) searchAcademic(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	params := url.Values{
		"search":   {query + " " + strings.Join(sustainabilityConcepts, " ")},
		"per_page": {fmt.Sprintf("%d", maxRecords(a.Cfg))},
		"page":     {"1"},
	}
	if a.Cfg.OpenAlexEmail != "" {
		params.Set("mailto", a.Cfg.OpenAlexEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var records []types.ResearchRecord
	for _, work := range oar.Results {
		if work.Title == "" {
			continue
		}
		r := types.ResearchRecord{
			Title:   work.Title,
			Authors: joinAuthors(work.Authorships),
			Date:    work.PublicationDate,
			Source:  "OpenAlex",
			Link:    "#",
			Summary: truncate(reconstructAbstract(work.AbstractInvertedIndex), 400),
			Kind:    types.KindAcademicPaper,
		}
		if work.PublicationDate == "" && work.PublicationYear > 0 {
			r.Date = fmt.Sprintf("%d", work.PublicationYear)
		}
		if work.DOI != "" {
			r.Link = work.DOI
		} else if work.ID != "" {
			r.Link = work.ID
		}
		records = append(records, r)
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// searchCertifications queries the certification registry for
// projects matching the query.
func (a *Sustainability) searchCertifications(ctx context.Context, query string) ([]types.ResearchRecord, error) {
	params := url.Values{"q": {query}, "limit": {fmt.Sprintf("%d", maxRecords(a.Cfg))}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certificationAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned HTTP %d", resp.StatusCode)
	}

	var cr certificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing registry response: %w", err)
	}

	var records []types.ResearchRecord
	for _, c := range cr.Certifications {
		if c.Project == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			Title:   fmt.Sprintf("%s — %s %s", c.Project, c.Scheme, c.Level),
			Date:    c.AwardedDate,
			Source:  "Green Building Registry",
			Link:    orPlaceholder(c.URL),
			Summary: truncate(c.Description, 400),
			Kind:    types.KindCertificationData,
		})
	}
	return limit(records, maxRecords(a.Cfg)), nil
}

// joinAuthors flattens OpenAlex authorships into the free-text
// authors field.
func joinAuthors(authorships []openAlexAuthorship) string {
	var names []string
	for _, as := range authorships {
		if as.Author.DisplayName != "" {
			names = append(names, as.Author.DisplayName)
		}
	}
	return strings.Join(names, ", ")
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index
// back to plain text. The inverted index maps each word to the
// positions where it appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

func orPlaceholder(link string) string {
	if link == "" {
		return "#"
	}
	return link
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

// Certification registry JSON structures.
type certificationResponse struct {
	Certifications []certificationEntry `json:"certifications"`
}

type certificationEntry struct {
	Project     string `json:"project"`
	Scheme      string `json:"scheme"`
	Level       string `json:"level"`
	AwardedDate string `json:"awarded_date"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
