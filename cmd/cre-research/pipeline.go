// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/pdiddy/cre-research/internal/adapter"
	"github.com/pdiddy/cre-research/internal/categorize"
	"github.com/pdiddy/cre-research/internal/httputil"
	"github.com/pdiddy/cre-research/internal/knowledgebase"
	"github.com/pdiddy/cre-research/internal/orchestrator"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/internal/synthesis"
	"github.com/pdiddy/cre-research/pkg/types"
)

// pipeline bundles the wired research components for one command
// invocation.
type pipeline struct {
	cfg      types.ResearchConfig
	sessions *session.MemoryStore
	kb       *knowledgebase.Store
	orch     *orchestrator.Orchestrator
}

// buildPipeline assembles the pipeline from config. A knowledge base
// that fails to open costs a warning, not the run: the fallback
// adapter simply skips its local corpus.
func buildPipeline(cfg types.ResearchConfig) (*pipeline, error) {
	cat := categorize.Default()
	if cfg.KeywordsFile != "" {
		loaded, err := categorize.Load(cfg.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading keyword overrides: %w", err)
		}
		cat = loaded
	}

	provider, err := synthesis.NewProvider(cfg.Synthesis, httputil.NewClient(cfg.Adapters.Timeout))
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:      cfg,
		sessions: session.NewMemoryStore(cfg.Sessions.TTL),
	}

	var searcher adapter.KnowledgeSearcher
	kb, err := knowledgebase.Open(cfg.KnowledgeBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: knowledge base unavailable: %v\n", err)
	} else {
		p.kb = kb
		searcher = kb
	}

	p.orch = orchestrator.New(cfg, p.sessions, cat, searcher, provider)
	return p, nil
}

func (p *pipeline) close() {
	p.sessions.Close()
	if p.kb != nil {
		p.kb.Close()
	}
}
