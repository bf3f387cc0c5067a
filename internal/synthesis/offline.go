// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/cre-research/pkg/types"
)

// OfflineProvider renders a deterministic markdown answer straight
// from the evidence records. It exists so research still produces a
// cited answer with no API key configured, and as the stable backend
// for tests.
type OfflineProvider struct{}

func (OfflineProvider) Name() string { return "offline" }

// Complete formats the structured request without calling any model.
func (OfflineProvider) Complete(_ context.Context, req Request) (string, error) {
	if len(req.Records) == 0 {
		return "", fmt.Errorf("no records to synthesize")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Research findings for %q, drawn from %d sources", req.Query, len(req.Records))
	if req.Document != nil {
		fmt.Fprintf(&b, " and interpreted alongside the supplied document (%d words on %s)",
			req.Document.WordCount, strings.Join(req.Document.Topics, ", "))
	}
	b.WriteString(". The sections below summarize each source in turn.\n")

	bySource := groupBySource(req.Records)
	for _, group := range bySource {
		fmt.Fprintf(&b, "\n## %s\n\n", group.source)
		for _, e := range group.entries {
			summary := e.record.Summary
			if summary == "" {
				summary = e.record.Title
			}
			// Document context informs the narrative but is never
			// cited.
			if group.source == types.SourceDocumentAnalysis {
				fmt.Fprintf(&b, "%s\n\n", summary)
				continue
			}
			fmt.Fprintf(&b, "%s [%d]\n\n", summary, e.position)
		}
	}

	b.WriteString("## Sources\n\n")
	for i, r := range req.Records {
		if r.Source == types.SourceDocumentAnalysis {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatReference(r))
	}

	return b.String(), nil
}

// sourceGroup keeps records of one source together with their
// original citation positions.
type sourceGroup struct {
	source  string
	entries []positionedRecord
}

type positionedRecord struct {
	record   types.ResearchRecord
	position int
}

// groupBySource buckets records by source name, preserving first-seen
// source order and record order within each source.
func groupBySource(records []types.ResearchRecord) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for i, r := range records {
		gi, ok := index[r.Source]
		if !ok {
			gi = len(groups)
			index[r.Source] = gi
			groups = append(groups, sourceGroup{source: r.Source})
		}
		groups[gi].entries = append(groups[gi].entries, positionedRecord{record: r, position: i + 1})
	}
	return groups
}
