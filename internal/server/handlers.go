// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/cre-research/internal/orchestrator"
	"github.com/pdiddy/cre-research/internal/report"
	"github.com/pdiddy/cre-research/pkg/types"
)

// researchRequest is the submit-research request body.
type researchRequest struct {
	Query     string                 `json:"query"`
	SessionID string                 `json:"session_id"`
	Document  *types.DocumentContext `json:"document,omitempty"`
}

// researchResponse is the submit-research reply.
type researchResponse struct {
	Category  types.Category   `json:"category"`
	Response  string           `json:"response"`
	Citations []types.Citation `json:"citations"`
	ReportID  string           `json:"report_id"`
	ReportURL string           `json:"report_url"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// handleResearch runs the pipeline synchronously. Clients poll the
// status endpoint from another connection while this one is in
// flight.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.runner.Run(r.Context(), orchestrator.Request{
		Query:     req.Query,
		SessionID: req.SessionID,
		Document:  req.Document,
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidRequest) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("research run failed", zap.String("session", req.SessionID), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "synthesis failed")
		return
	}

	generated := s.now()
	reportID := s.reports.Put(report.Artifact{
		Filename: report.Filename(generated),
		Content:  report.Render(req.Query, result.Category, result.Answer, result.Records, generated),
		Created:  generated,
	})

	s.writeJSON(w, http.StatusOK, researchResponse{
		Category:  result.Category,
		Response:  result.Answer.Response,
		Citations: result.Answer.Citations,
		ReportID:  reportID,
		ReportURL: "/api/reports/" + reportID,
	})
}

// handleStatus returns the live progress of a session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	s.writeJSON(w, http.StatusOK, s.sessions.Get(id))
}

// handleReport serves a stored artifact as a markdown download.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	artifact, ok := s.reports.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "report not found or expired")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	fmt.Fprint(w, artifact.Content)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
