// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"

	"github.com/pdiddy/cre-research/pkg/types"
)

// projectCitations maps the evidence records, in order, to positional
// citations. Entry N corresponds to bracket marker [N+1] in the
// answer. A document-analysis record stays in the prompt's numbered
// sequence but never becomes a citation.
func projectCitations(records []types.ResearchRecord) []types.Citation {
	citations := make([]types.Citation, 0, len(records))
	for _, r := range records {
		if r.Source == types.SourceDocumentAnalysis {
			continue
		}
		citations = append(citations, types.Citation{
			Title:   r.Title,
			Authors: r.Authors,
			Source:  r.Source,
			Link:    r.Link,
			Date:    r.Date,
		})
	}
	return citations
}

// FormatReference renders one record as a reference-list line. The
// layout varies by record kind: academic papers lead with authors,
// reports and certification data drop them, web content notes when it
// was retrieved.
func FormatReference(r types.ResearchRecord) string {
	switch r.Kind {
	case types.KindAcademicPaper:
		return fmt.Sprintf("%s (%s). %q. %s. Available at: %s",
			orUnknown(r.Authors), orUnknown(r.Date), r.Title, r.Source, r.Link)
	case types.KindMarketReport, types.KindCertificationData, types.KindEconomicData:
		return fmt.Sprintf("%q. %s, %s. Available at: %s",
			r.Title, r.Source, orUnknown(r.Date), r.Link)
	case types.KindNewsArticle:
		return fmt.Sprintf("%q. %s, %s. %s",
			r.Title, r.Source, orUnknown(r.Date), r.Link)
	case types.KindWebContent:
		return fmt.Sprintf("%q. %s. Retrieved %s. %s",
			r.Title, r.Source, orUnknown(r.Date), r.Link)
	default:
		return fmt.Sprintf("%s. %q. %s. %s. %s",
			orUnknown(r.Authors), r.Title, r.Source, orUnknown(r.Date), r.Link)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "n.d."
	}
	return s
}
