package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/cre-research/internal/adapter"
	"github.com/pdiddy/cre-research/internal/categorize"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/internal/synthesis"
	"github.com/pdiddy/cre-research/pkg/types"
)

// stubAdapter is a canned-result adapter that records whether it ran.
type stubAdapter struct {
	name    string
	topic   types.Category
	result  adapter.Result
	delay   time.Duration
	fetched atomic.Bool
}

func (s *stubAdapter) Name() string          { return s.name }
func (s *stubAdapter) Topic() types.Category { return s.topic }

func (s *stubAdapter) Fetch(ctx context.Context, _, _ string) adapter.Result {
	s.fetched.Store(true)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return s.result
}

func record(title string) types.ResearchRecord {
	return types.ResearchRecord{
		Title:   title,
		Source:  "Stub",
		Link:    "#",
		Summary: title + " summary",
		Kind:    types.KindWebContent,
	}
}

// testHarness mirrors the production adapter ordering with stubs.
type testHarness struct {
	orch           *Orchestrator
	sessions       *session.MemoryStore
	sustainability *stubAdapter
	leasing        *stubAdapter
	market         *stubAdapter
	fallback       *stubAdapter
}

func newHarness(t *testing.T, provider synthesis.Provider) *testHarness {
	t.Helper()

	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(sessions.Close)

	h := &testHarness{
		sessions: sessions,
		sustainability: &stubAdapter{
			name:   "Sustainability Research",
			topic:  types.CategorySustainability,
			result: adapter.Result{Records: []types.ResearchRecord{record("sustainability finding")}},
		},
		leasing: &stubAdapter{
			name:   "Leasing Research",
			topic:  types.CategoryLeasing,
			result: adapter.Result{Records: []types.ResearchRecord{record("leasing finding")}},
		},
		market: &stubAdapter{
			name:   "Market Research",
			topic:  types.CategoryMarket,
			result: adapter.Result{Records: []types.ResearchRecord{record("market finding")}},
		},
		fallback: &stubAdapter{
			name:   "General Research",
			topic:  types.CategoryGeneral,
			result: adapter.Result{Records: []types.ResearchRecord{record("general finding")}},
		},
	}

	if provider == nil {
		provider = synthesis.OfflineProvider{}
	}
	h.orch = &Orchestrator{
		Sessions:    sessions,
		Categorizer: categorize.Default(),
		Adapters: []adapter.Adapter{
			h.sustainability, h.leasing, h.market, h.fallback,
		},
		Synthesizer:  &synthesis.Synthesizer{Provider: provider},
		FetchTimeout: time.Second,
	}
	return h
}

func TestRunSustainabilityQuery(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.orch.Run(context.Background(), Request{
		Query:     "What are current LEED certification trends?",
		SessionID: "sess-a",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Category != types.CategorySustainability {
		t.Errorf("category = %q", res.Category)
	}
	if !h.sustainability.fetched.Load() || !h.fallback.fetched.Load() {
		t.Error("sustainability and fallback adapters should run")
	}
	if h.leasing.fetched.Load() || h.market.fetched.Load() {
		t.Error("off-topic adapters should not run")
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %+v", res.Records)
	}
	if res.Records[0].Title != "sustainability finding" || res.Records[1].Title != "general finding" {
		t.Errorf("aggregation order wrong: %+v", res.Records)
	}

	progress := h.sessions.Get("sess-a")
	if !progress.Complete {
		t.Error("session should be complete")
	}
	if len(progress.Events) == 0 || !strings.Contains(progress.Events[0].Step, "categorized as sustainability") {
		t.Errorf("events = %+v", progress.Events)
	}
}

func TestRunGeneralQueryFansOutToAll(t *testing.T) {
	h := newHarness(t, nil)
	// The first adapter is slowest; its records must still come first.
	h.sustainability.delay = 50 * time.Millisecond

	res, err := h.orch.Run(context.Background(), Request{
		Query:     "tell me something interesting",
		SessionID: "sess-c",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Category != types.CategoryGeneral {
		t.Errorf("category = %q", res.Category)
	}
	for _, a := range []*stubAdapter{h.sustainability, h.leasing, h.market, h.fallback} {
		if !a.fetched.Load() {
			t.Errorf("adapter %s did not run", a.name)
		}
	}
	want := []string{"sustainability finding", "leasing finding", "market finding", "general finding"}
	if len(res.Records) != len(want) {
		t.Fatalf("records = %+v", res.Records)
	}
	for i, title := range want {
		if res.Records[i].Title != title {
			t.Errorf("records[%d] = %q, want %q", i, res.Records[i].Title, title)
		}
	}
}

func TestRunInvalidRequest(t *testing.T) {
	h := newHarness(t, nil)

	if _, err := h.orch.Run(context.Background(), Request{SessionID: "s"}); err != ErrInvalidRequest {
		t.Errorf("missing query: err = %v", err)
	}
	if _, err := h.orch.Run(context.Background(), Request{Query: "q"}); err != ErrInvalidRequest {
		t.Errorf("missing session: err = %v", err)
	}

	// No session state was created.
	if got := h.sessions.Get("s"); len(got.Events) != 0 || got.Complete {
		t.Errorf("session mutated on invalid request: %+v", got)
	}
}

func TestRunLogsAdapterWarnings(t *testing.T) {
	h := newHarness(t, nil)
	h.fallback.result.Warnings = []string{"General Research: web search: boom"}

	if _, err := h.orch.Run(context.Background(), Request{
		Query:     "office vacancy rate forecast",
		SessionID: "sess-b",
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	found := false
	for _, e := range h.sessions.Get("sess-b").Events {
		if strings.Contains(e.Step, "web search: boom") {
			found = true
		}
	}
	if !found {
		t.Error("adapter warning not logged as a progress event")
	}
}

// failingProvider always errors.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Complete(context.Context, synthesis.Request) (string, error) {
	return "", fmt.Errorf("model unavailable")
}

func TestRunSynthesisFailureLeavesSessionComplete(t *testing.T) {
	h := newHarness(t, failingProvider{})

	_, err := h.orch.Run(context.Background(), Request{
		Query:     "office vacancy rate forecast",
		SessionID: "sess-d",
	})
	if err == nil {
		t.Fatal("expected synthesis error to propagate")
	}

	// Fan-out finished, so the session is complete despite the error.
	if !h.sessions.Get("sess-d").Complete {
		t.Error("session should be complete after fan-out")
	}
}

// capturingProvider records the request it was handed.
type capturingProvider struct {
	req synthesis.Request
}

func (p *capturingProvider) Name() string { return "capturing" }

func (p *capturingProvider) Complete(_ context.Context, req synthesis.Request) (string, error) {
	p.req = req
	return "Answer [1].", nil
}

func TestRunDocumentContext(t *testing.T) {
	provider := &capturingProvider{}
	h := newHarness(t, provider)

	doc := &types.DocumentContext{
		Summary:   "Lease abstract for a logistics portfolio.",
		Topics:    []string{"leasing", "industrial"},
		WordCount: 1200,
	}
	res, err := h.orch.Run(context.Background(), Request{
		Query:     "lease rates for industrial space",
		SessionID: "sess-doc",
		Document:  doc,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	last := res.Records[len(res.Records)-1]
	if last.Source != types.SourceDocumentAnalysis {
		t.Errorf("last record = %+v, want document analysis record", last)
	}
	for _, c := range res.Answer.Citations {
		if c.Source == types.SourceDocumentAnalysis {
			t.Error("document record must not be cited")
		}
	}
	// One citation per research record, none for the document.
	if len(res.Answer.Citations) != len(res.Records)-1 {
		t.Errorf("citations = %d, records = %d", len(res.Answer.Citations), len(res.Records))
	}

	// The document record reaches the provider as the last numbered
	// source in both the record sequence and the rendered prompt.
	got := provider.req.Records
	if len(got) != len(res.Records) || got[len(got)-1].Source != types.SourceDocumentAnalysis {
		t.Errorf("provider records = %+v", got)
	}
	docEntry := fmt.Sprintf("[%d] Provided Document Analysis", len(res.Records))
	if !strings.Contains(provider.req.Prompt, docEntry) {
		t.Errorf("prompt missing %q:\n%s", docEntry, provider.req.Prompt)
	}
	for i := range res.Records[:len(res.Records)-1] {
		entry := fmt.Sprintf("[%d] ", i+1)
		if strings.Index(provider.req.Prompt, entry) > strings.Index(provider.req.Prompt, docEntry) {
			t.Errorf("source %s listed after the document entry", entry)
		}
	}
}

func TestRunAdapterTimeout(t *testing.T) {
	h := newHarness(t, nil)
	h.orch.FetchTimeout = 20 * time.Millisecond
	h.market.delay = 500 * time.Millisecond

	start := time.Now()
	res, err := h.orch.Run(context.Background(), Request{
		Query:     "office vacancy rate forecast",
		SessionID: "sess-t",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("run took %v, adapter timeout did not bound it", elapsed)
	}
	// The slow adapter still returned its canned result after ctx
	// expiry; the run just refused to wait longer than the timeout.
	if len(res.Records) == 0 {
		t.Error("expected records from the remaining adapters")
	}
}
