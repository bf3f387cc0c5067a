// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders downloadable markdown artifacts for finished
// research runs and keeps them available for a bounded time.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/cre-research/internal/synthesis"
	"github.com/pdiddy/cre-research/pkg/types"
)

// Render produces the markdown report body for one research run. The
// answer markdown is embedded as-is; the reference list re-renders
// every research record so the report stands alone. A document-
// analysis record, when present, moves to its own appendix instead of
// the reference list.
func Render(query string, category types.Category, answer types.SynthesizedResponse, records []types.ResearchRecord, generated time.Time) string {
	var b strings.Builder

	b.WriteString("# Research Report\n\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", query)
	fmt.Fprintf(&b, "**Category:** %s\n\n", category)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", generated.Format(time.RFC3339))
	b.WriteString("---\n\n")

	b.WriteString(strings.TrimRight(answer.Response, "\n"))
	b.WriteString("\n\n## References\n\n")

	n := 0
	var doc *types.ResearchRecord
	for i := range records {
		if records[i].Source == types.SourceDocumentAnalysis {
			doc = &records[i]
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, synthesis.FormatReference(records[i]))
	}

	if doc != nil {
		b.WriteString("\n## Provided Document\n\n")
		fmt.Fprintf(&b, "%s\n", doc.Summary)
	}

	return b.String()
}

// Filename derives a stable artifact filename from the generation
// time.
func Filename(generated time.Time) string {
	return fmt.Sprintf("research-report-%s.md", generated.Format("20060102-150405"))
}
