package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/cre-research/internal/orchestrator"
	"github.com/pdiddy/cre-research/internal/report"
	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// stubRunner returns a canned result or error.
type stubRunner struct {
	result orchestrator.Result
	err    error
	got    orchestrator.Request
}

func (s *stubRunner) Run(_ context.Context, req orchestrator.Request) (orchestrator.Result, error) {
	s.got = req
	if req.Query == "" || req.SessionID == "" {
		return orchestrator.Result{}, orchestrator.ErrInvalidRequest
	}
	return s.result, s.err
}

func newTestServer(t *testing.T, runner Runner) (*Server, *session.MemoryStore) {
	t.Helper()

	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(sessions.Close)

	reports := report.NewStore(time.Minute)
	t.Cleanup(reports.Close)

	return New(zaptest.NewLogger(t), runner, sessions, reports), sessions
}

func TestHandleResearch(t *testing.T) {
	runner := &stubRunner{
		result: orchestrator.Result{
			Category: types.CategoryMarket,
			Records: []types.ResearchRecord{
				{Title: "Q2 Report", Source: "CRE Analytics", Link: "#", Kind: types.KindMarketReport},
			},
			Answer: types.SynthesizedResponse{
				Response:  "Vacancy is rising [1].",
				Citations: []types.Citation{{Title: "Q2 Report", Source: "CRE Analytics", Link: "#"}},
			},
		},
	}
	srv, _ := newTestServer(t, runner)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"query": "office vacancy", "session_id": "sess-1"}`
	resp, err := http.Post(ts.URL+"/api/research", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rr researchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rr))
	assert.Equal(t, types.CategoryMarket, rr.Category)
	assert.Equal(t, "Vacancy is rising [1].", rr.Response)
	assert.Len(t, rr.Citations, 1)
	assert.NotEmpty(t, rr.ReportID)
	assert.Equal(t, "/api/reports/"+rr.ReportID, rr.ReportURL)
	assert.Equal(t, "office vacancy", runner.got.Query)

	// The artifact is immediately downloadable.
	dl, err := http.Get(ts.URL + rr.ReportURL)
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "research-report-")
}

func TestHandleResearchValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"session_id": "s"}`},
		{"missing session", `{"query": "q"}`},
		{"malformed JSON", `{"query": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/research", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleResearchSynthesisFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{err: fmt.Errorf("model unavailable")})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/research", "application/json",
		strings.NewReader(`{"query": "q", "session_id": "s"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandleStatus(t *testing.T) {
	srv, sessions := newTestServer(t, &stubRunner{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	sessions.Begin("sess-2")
	sessions.Log("sess-2", "starting market search", "Market Research")

	resp, err := http.Get(ts.URL + "/api/status/sess-2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var progress types.SessionProgress
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&progress))
	require.Len(t, progress.Events, 1)
	assert.Equal(t, "starting market search", progress.Events[0].Step)
	assert.False(t, progress.Complete)

	// Unknown sessions report empty progress, not an error.
	resp2, err := http.Get(ts.URL + "/api/status/nope")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestHandleReportNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/reports/00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
