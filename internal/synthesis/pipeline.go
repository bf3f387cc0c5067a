// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"fmt"

	"github.com/pdiddy/cre-research/pkg/types"
)

// Synthesizer renders the prompt, invokes the provider, and projects
// positional citations from the evidence records.
type Synthesizer struct {
	Provider Provider
}

// Synthesize produces the final answer for a query. The document
// context, when present, informs the prompt but never appears in the
// citation list.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, records []types.ResearchRecord, doc *types.DocumentContext) (types.SynthesizedResponse, error) {
	if len(records) == 0 {
		return types.SynthesizedResponse{}, fmt.Errorf("no research records to synthesize")
	}

	prompt, err := renderPrompt(query, records, doc)
	if err != nil {
		return types.SynthesizedResponse{}, err
	}

	text, err := s.Provider.Complete(ctx, Request{
		Query:    query,
		Records:  records,
		Document: doc,
		Prompt:   prompt,
	})
	if err != nil {
		return types.SynthesizedResponse{}, fmt.Errorf("%s synthesis: %w", s.Provider.Name(), err)
	}

	return types.SynthesizedResponse{
		Response:  text,
		Citations: projectCitations(records),
	}, nil
}
