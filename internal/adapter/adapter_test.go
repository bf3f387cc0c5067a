package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// --- shared test helpers ---

func testSessions(t *testing.T) *session.MemoryStore {
	t.Helper()
	s := session.NewMemoryStore(time.Minute)
	t.Cleanup(s.Close)
	s.Begin("sess")
	return s
}

func testCfg() types.AdapterConfig {
	return types.AdapterConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "cre-research-test/0.1",
		},
		MaxRecords: 5,
		MinRecords: 3,
	}
}

// panicSearcher implements KnowledgeSearcher and always panics,
// exercising the guard recovery path.
type panicSearcher struct{}

func (panicSearcher) Search(context.Context, string) ([]types.ResearchRecord, error) {
	panic("kb exploded")
}

func TestGuardRecoversPanic(t *testing.T) {
	sessions := testSessions(t)

	a := &Fallback{
		Client:    nil, // would panic if reached; guard must fire first
		Sessions:  sessions,
		Cfg:       testCfg(),
		Knowledge: panicSearcher{},
	}

	res := a.Fetch(context.Background(), "anything", "sess")

	if len(res.Records) != 0 {
		t.Errorf("panicked fetch returned %d records, want 0", len(res.Records))
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", res.Warnings)
	}

	// The error is visible in the session log.
	events := sessions.Get("sess").Events
	found := false
	for _, e := range events {
		if e.Step == "error in General Research search" {
			found = true
		}
	}
	if !found {
		t.Errorf("no error event logged; events: %+v", events)
	}
}

func TestSyntheticRecordShape(t *testing.T) {
	r := syntheticRecord("Market Research", "cap rates")
	if r.Link != "#" {
		t.Errorf("link = %q, want placeholder", r.Link)
	}
	if r.Kind != types.KindWebContent {
		t.Errorf("kind = %q", r.Kind)
	}
	if r.Source != "Market Research" {
		t.Errorf("source = %q", r.Source)
	}
}

func TestLimit(t *testing.T) {
	records := make([]types.ResearchRecord, 7)
	if got := limit(records, 5); len(got) != 5 {
		t.Errorf("limit(7, 5) = %d", len(got))
	}
	if got := limit(records, 0); len(got) != 7 {
		t.Errorf("limit(7, 0) = %d", len(got))
	}
}
