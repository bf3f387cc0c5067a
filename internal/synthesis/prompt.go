// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/cre-research/pkg/types"
)

// synthesisPromptTmpl is the prompt sent to the model provider. It
// numbers the evidence records so the model can cite them by position
// with bracketed markers.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are a commercial real estate research analyst. Answer the user's question using ONLY the numbered sources below.

Structure your answer as markdown:
- Open with a short executive summary paragraph.
- Follow with sections under "##" headings organized by theme.
- Cite sources inline with bracketed numbers matching the source list, e.g. [1] or [2][3]. Every factual statement needs at least one citation.
- Close with a "## Sources" section listing each cited source on its own numbered line.

Do not invent facts, figures, or sources. If the sources do not cover part of the question, say so.
{{if .Document}}
The final numbered source is an analysis of a document the user supplied. Use it as context for interpreting the question, but never cite it:
Summary: {{.Document.Summary}}
Topics: {{.Document.Topics}}
Word count: {{.Document.WordCount}}
{{end}}
Question: {{.Query}}

Sources:
{{.Sources}}
`))

// docView is the template-facing shape of a document context.
type docView struct {
	Summary   string
	Topics    string
	WordCount int
}

// renderPrompt numbers the records and executes the prompt template.
func renderPrompt(query string, records []types.ResearchRecord, doc *types.DocumentContext) (string, error) {
	var sources strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sources, "[%d] %s", i+1, r.Title)
		if r.Authors != "" {
			fmt.Fprintf(&sources, " — %s", r.Authors)
		}
		if r.Date != "" {
			fmt.Fprintf(&sources, " (%s)", r.Date)
		}
		fmt.Fprintf(&sources, ". %s.\n", r.Source)
		if r.Summary != "" {
			fmt.Fprintf(&sources, "    %s\n", r.Summary)
		}
	}

	data := struct {
		Query    string
		Sources  string
		Document *docView
	}{
		Query:   query,
		Sources: strings.TrimRight(sources.String(), "\n"),
	}
	if doc != nil {
		data.Document = &docView{
			Summary:   doc.Summary,
			Topics:    strings.Join(doc.Topics, ", "),
			WordCount: doc.WordCount,
		}
	}

	var buf bytes.Buffer
	if err := synthesisPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering synthesis prompt: %w", err)
	}
	return buf.String(), nil
}
