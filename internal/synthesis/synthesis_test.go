package synthesis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/cre-research/pkg/types"
)

func testRecords() []types.ResearchRecord {
	return []types.ResearchRecord{
		{
			Title:   "Energy retrofits in office towers",
			Authors: "Chen, L., Okafor, A.",
			Date:    "2023-04-01",
			Source:  "OpenAlex",
			Link:    "https://doi.org/10.1000/retro",
			Summary: "Retrofits cut operating costs.",
			Kind:    types.KindAcademicPaper,
		},
		{
			Title:   "Q2 National Office Report",
			Date:    "2024-07-01",
			Source:  "CRE Analytics",
			Link:    "https://example.com/q2",
			Summary: "Vacancy rose 40 bps.",
			Kind:    types.KindMarketReport,
		},
	}
}

func TestRenderPrompt(t *testing.T) {
	prompt, err := renderPrompt("office retrofits", testRecords(), nil)
	if err != nil {
		t.Fatalf("renderPrompt: %v", err)
	}

	for _, want := range []string{
		"Question: office retrofits",
		"[1] Energy retrofits in office towers — Chen, L., Okafor, A. (2023-04-01). OpenAlex.",
		"[2] Q2 National Office Report (2024-07-01). CRE Analytics.",
		"Retrofits cut operating costs.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "The final numbered source") {
		t.Error("document block rendered without a document")
	}
}

func documentRecord() types.ResearchRecord {
	return types.ResearchRecord{
		Title:   "Provided Document Analysis",
		Source:  types.SourceDocumentAnalysis,
		Link:    "#",
		Summary: "A lease abstract for a suburban office park.",
		Kind:    types.KindWebContent,
	}
}

func TestRenderPromptWithDocument(t *testing.T) {
	doc := &types.DocumentContext{
		Summary:   "A lease abstract for a suburban office park.",
		Topics:    []string{"leasing", "office"},
		WordCount: 2400,
	}
	records := append(testRecords(), documentRecord())
	prompt, err := renderPrompt("renewal strategy", records, doc)
	if err != nil {
		t.Fatalf("renderPrompt: %v", err)
	}
	for _, want := range []string{
		"The final numbered source is an analysis of a document the user supplied",
		"never cite it",
		"[3] Provided Document Analysis",
		"Summary: A lease abstract for a suburban office park.",
		"Topics: leasing, office",
		"Word count: 2400",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// The document analysis rides along as the last numbered source.
	if strings.Index(prompt, "[3] Provided Document Analysis") < strings.Index(prompt, "[2] Q2 National Office Report") {
		t.Errorf("document entry not last in source list:\n%s", prompt)
	}
}

func TestProjectCitationsPositional(t *testing.T) {
	citations := projectCitations(testRecords())
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(citations))
	}
	if citations[0].Title != "Energy retrofits in office towers" {
		t.Errorf("citations[0] = %+v", citations[0])
	}
	if citations[1].Source != "CRE Analytics" || citations[1].Authors != "" {
		t.Errorf("citations[1] = %+v", citations[1])
	}
}

func TestProjectCitationsSkipsDocumentAnalysis(t *testing.T) {
	records := append(testRecords(), documentRecord())
	citations := projectCitations(records)
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(citations))
	}
	for _, c := range citations {
		if c.Source == types.SourceDocumentAnalysis {
			t.Errorf("document analysis cited: %+v", c)
		}
	}
}

func TestFormatReference(t *testing.T) {
	tests := []struct {
		name   string
		record types.ResearchRecord
		want   string
	}{
		{
			name: "academic paper leads with authors",
			record: types.ResearchRecord{
				Title: "Green premiums", Authors: "Shaw, P.", Date: "2022",
				Source: "OpenAlex", Link: "https://doi.org/x", Kind: types.KindAcademicPaper,
			},
			want: `Shaw, P. (2022). "Green premiums". OpenAlex. Available at: https://doi.org/x`,
		},
		{
			name: "market report omits authors",
			record: types.ResearchRecord{
				Title: "Q2 Report", Authors: "ignored", Date: "2024-07-01",
				Source: "CRE Analytics", Link: "https://example.com/q2", Kind: types.KindMarketReport,
			},
			want: `"Q2 Report". CRE Analytics, 2024-07-01. Available at: https://example.com/q2`,
		},
		{
			name: "certification data omits authors",
			record: types.ResearchRecord{
				Title: "Tower One — LEED Gold", Date: "2023-05-01",
				Source: "Certification Registry", Link: "#", Kind: types.KindCertificationData,
			},
			want: `"Tower One — LEED Gold". Certification Registry, 2023-05-01. Available at: #`,
		},
		{
			name: "web content notes retrieval",
			record: types.ResearchRecord{
				Title: "Commercial property", Date: "2024-08-01",
				Source: "Wikipedia", Link: "https://en.wikipedia.org/wiki/Commercial_property",
				Kind: types.KindWebContent,
			},
			want: `"Commercial property". Wikipedia. Retrieved 2024-08-01. https://en.wikipedia.org/wiki/Commercial_property`,
		},
		{
			name: "unknown kind keeps everything",
			record: types.ResearchRecord{
				Title: "Mystery", Authors: "Doe, J.", Date: "2020",
				Source: "Somewhere", Link: "https://example.com",
			},
			want: `Doe, J.. "Mystery". Somewhere. 2020. https://example.com`,
		},
		{
			name: "missing date becomes n.d.",
			record: types.ResearchRecord{
				Title: "Undated", Source: "Web Content", Link: "#", Kind: types.KindWebContent,
			},
			want: `"Undated". Web Content. Retrieved n.d.. #`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReference(tt.record); got != tt.want {
				t.Errorf("FormatReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOfflineProviderComplete(t *testing.T) {
	out, err := OfflineProvider{}.Complete(context.Background(), Request{
		Query:   "office retrofits",
		Records: testRecords(),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	for _, want := range []string{
		"## OpenAlex",
		"Retrofits cut operating costs. [1]",
		"## CRE Analytics",
		"Vacancy rose 40 bps. [2]",
		"## Sources",
		`1. Chen, L., Okafor, A. (2023-04-01). "Energy retrofits in office towers". OpenAlex.`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("answer missing %q:\n%s", want, out)
		}
	}
}

func TestOfflineProviderNoRecords(t *testing.T) {
	if _, err := (OfflineProvider{}).Complete(context.Background(), Request{Query: "q"}); err == nil {
		t.Error("expected error with no records")
	}
}

// fakeProvider returns a fixed answer or error.
type fakeProvider struct {
	answer string
	err    error
	prompt string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req Request) (string, error) {
	f.prompt = req.Prompt
	return f.answer, f.err
}

func TestSynthesizeProjectsCitations(t *testing.T) {
	fake := &fakeProvider{answer: "All good [1][2].\n\n## Sources\n..."}
	s := &Synthesizer{Provider: fake}

	resp, err := s.Synthesize(context.Background(), "office retrofits", testRecords(), nil)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if resp.Response != fake.answer {
		t.Errorf("response = %q", resp.Response)
	}
	if len(resp.Citations) != 2 {
		t.Errorf("citations = %d, want 2", len(resp.Citations))
	}
	if !strings.Contains(fake.prompt, "Question: office retrofits") {
		t.Errorf("provider prompt = %q", fake.prompt)
	}
}

func TestSynthesizeProviderErrorPropagates(t *testing.T) {
	s := &Synthesizer{Provider: &fakeProvider{err: fmt.Errorf("model unavailable")}}
	if _, err := s.Synthesize(context.Background(), "q", testRecords(), nil); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestSynthesizeNoRecords(t *testing.T) {
	s := &Synthesizer{Provider: OfflineProvider{}}
	if _, err := s.Synthesize(context.Background(), "q", nil, nil); err == nil {
		t.Error("expected error with no records")
	}
}

func TestClaudeProviderComplete(t *testing.T) {
	var gotVersion, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "Answer [1]."}]}`)
	}))
	defer server.Close()

	old := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = old }()

	p := &ClaudeProvider{APIKey: "test-key", Client: server.Client()}
	out, err := p.Complete(context.Background(), Request{Prompt: "prompt"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Answer [1]." {
		t.Errorf("out = %q", out)
	}
	if gotVersion != "2023-06-01" || gotKey != "test-key" {
		t.Errorf("headers: version=%q key=%q", gotVersion, gotKey)
	}
}

func TestClaudeProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	old := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = old }()

	p := &ClaudeProvider{APIKey: "test-key", Client: server.Client()}
	if _, err := p.Complete(context.Background(), Request{Prompt: "prompt"}); err == nil {
		t.Error("expected error on HTTP 503")
	}
}

func TestNewProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.SynthesisConfig
		want    string
		wantErr bool
	}{
		{
			name: "explicit offline",
			cfg:  types.SynthesisConfig{Provider: types.ProviderOffline},
			want: "offline",
		},
		{
			name:    "claude needs key",
			cfg:     types.SynthesisConfig{Provider: types.ProviderClaude},
			wantErr: true,
		},
		{
			name: "empty prefers claude when keyed",
			cfg:  types.SynthesisConfig{AnthropicAPIKey: "k"},
			want: "claude",
		},
		{
			name: "empty with no keys is offline",
			cfg:  types.SynthesisConfig{},
			want: "offline",
		},
		{
			name:    "unknown provider",
			cfg:     types.SynthesisConfig{Provider: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("provider = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}
