// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs the research pipeline for one query:
// session lifecycle, categorization, adapter fan-out, aggregation,
// and synthesis.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/cre-research/internal/adapter"
	"github.com/pdiddy/cre-research/internal/categorize"
	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/internal/synthesis"
	"github.com/pdiddy/cre-research/pkg/types"
)

// ErrInvalidRequest reports a request missing its query or session id.
// No session state is touched when validation fails.
var ErrInvalidRequest = errors.New("research request requires a query and a session id")

// defaultFetchTimeout bounds each adapter's fan-out slot when the
// config leaves it unset.
const defaultFetchTimeout = 15 * time.Second

// Request is one research job.
type Request struct {
	Query     string
	SessionID string

	// Document optionally carries pre-analyzed document context. It
	// informs synthesis but is never cited as a source.
	Document *types.DocumentContext
}

// Result is the aggregate outcome of a research run.
type Result struct {
	Category types.Category
	Records  []types.ResearchRecord
	Answer   types.SynthesizedResponse
}

// Orchestrator wires the pipeline stages together. Adapters hold
// their fixed aggregation order.
type Orchestrator struct {
	Sessions     session.Store
	Categorizer  *categorize.Categorizer
	Adapters     []adapter.Adapter
	Synthesizer  *synthesis.Synthesizer
	FetchTimeout time.Duration
}

// New wires the standard adapter set, sharing one retrying HTTP
// client across adapters.
func New(cfg types.ResearchConfig, sessions session.Store, cat *categorize.Categorizer, kb adapter.KnowledgeSearcher, provider synthesis.Provider) *Orchestrator {
	client := httputil.NewClient(cfg.Adapters.Timeout)
	return &Orchestrator{
		Sessions:    sessions,
		Categorizer: cat,
		Adapters: []adapter.Adapter{
			&adapter.Sustainability{Client: client, Sessions: sessions, Cfg: cfg.Adapters},
			&adapter.Leasing{Client: client, Sessions: sessions, Cfg: cfg.Adapters},
			&adapter.Market{Client: client, Sessions: sessions, Cfg: cfg.Adapters},
			&adapter.Fallback{Client: client, Sessions: sessions, Cfg: cfg.Adapters, Knowledge: kb},
		},
		Synthesizer:  &synthesis.Synthesizer{Provider: provider},
		FetchTimeout: cfg.Adapters.FetchTimeout,
	}
}

// Run executes the full pipeline for one request. Adapter failures
// degrade to warnings; only invalid input and synthesis failure
// return an error. The session is marked complete once fan-out has
// finished, so a synthesis failure still leaves a complete session.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if req.Query == "" || req.SessionID == "" {
		return Result{}, ErrInvalidRequest
	}

	o.Sessions.Begin(req.SessionID)

	category := o.Categorizer.Categorize(req.Query)
	o.Sessions.Log(req.SessionID, fmt.Sprintf("query categorized as %s", category), "Query Router")

	records, warnings := o.fanOut(ctx, req, category)
	for _, w := range warnings {
		o.Sessions.Log(req.SessionID, w, "Research Aggregator")
	}

	if req.Document != nil {
		records = append(records, documentRecord(req.Document))
	}

	o.Sessions.Log(req.SessionID, "synthesizing response", "Synthesis")
	o.Sessions.Complete(req.SessionID)

	answer, err := o.Synthesizer.Synthesize(ctx, req.Query, records, req.Document)
	if err != nil {
		return Result{}, err
	}

	return Result{Category: category, Records: records, Answer: answer}, nil
}

// fanOut runs every selected adapter concurrently, each under its own
// timeout, and joins the results in the adapters' declared order.
func (o *Orchestrator) fanOut(ctx context.Context, req Request, category types.Category) ([]types.ResearchRecord, []string) {
	timeout := o.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	selected := make([]adapter.Adapter, 0, len(o.Adapters))
	for _, a := range o.Adapters {
		if o.selects(a, category) {
			selected = append(selected, a)
		}
	}

	results := make([]adapter.Result, len(selected))
	var wg sync.WaitGroup
	for i, a := range selected {
		wg.Add(1)
		go func(i int, a adapter.Adapter) {
			defer wg.Done()
			actx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[i] = a.Fetch(actx, req.Query, req.SessionID)
		}(i, a)
	}
	wg.Wait()

	var records []types.ResearchRecord
	var warnings []string
	for _, res := range results {
		records = append(records, res.Records...)
		warnings = append(warnings, res.Warnings...)
	}
	return records, warnings
}

// selects reports whether an adapter participates for a category.
// General-topic adapters always run; topical adapters run for their
// own category and for general queries.
func (o *Orchestrator) selects(a adapter.Adapter, category types.Category) bool {
	return a.Topic() == types.CategoryGeneral ||
		a.Topic() == category ||
		category == types.CategoryGeneral
}

// documentRecord represents the supplied document in the aggregated
// record sequence, after every adapter-derived record. It is numbered
// into the synthesis prompt like any other record; citation
// projection skips it by source.
func documentRecord(doc *types.DocumentContext) types.ResearchRecord {
	return types.ResearchRecord{
		Title:   "Provided Document Analysis",
		Date:    time.Now().Format("2006-01-02"),
		Source:  types.SourceDocumentAnalysis,
		Link:    "#",
		Summary: doc.Summary,
		Kind:    types.KindWebContent,
	}
}
