// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package adapter wraps external data providers behind a common
// contract: each adapter covers one topical cluster, normalizes
// provider payloads into ResearchRecords, and degrades on provider
// failure instead of propagating it. A failed provider costs records
// and produces a warning, never an error.
package adapter

import (
	"context"
	"fmt"

	"github.com/pdiddy/cre-research/internal/session"
	"github.com/pdiddy/cre-research/pkg/types"
)

// Adapter is one topical cluster of external data providers.
type Adapter interface {
	// Name is the display name used in session events and warnings.
	Name() string

	// Topic is the category this adapter serves; the fallback adapter
	// returns general and runs for every query.
	Topic() types.Category

	// Fetch gathers evidence for the query. It must not panic or
	// return an error past this boundary: provider failures degrade
	// to fewer records plus warnings.
	Fetch(ctx context.Context, query, sessionID string) Result
}

// Result is the outcome of one adapter run: the records it gathered
// plus warnings describing any providers that failed along the way.
// An empty Records with warnings is a fully degraded run; the
// orchestrator treats both the same and only surfaces warnings
// through the session log.
type Result struct {
	Records  []types.ResearchRecord
	Warnings []string
}

// warnf appends a formatted warning.
func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// guard converts a panic inside an adapter into an empty degraded
// result, honoring the never-propagate contract. Adapters call it as
// a deferred closure around their result.
func guard(sessions session.Store, sessionID, name string, res *Result) {
	if rec := recover(); rec != nil {
		sessions.Log(sessionID, fmt.Sprintf("error in %s search", name), name)
		*res = Result{Warnings: []string{fmt.Sprintf("%s: internal error: %v", name, rec)}}
	}
}

// syntheticRecord is the canned general-information record an adapter
// returns when every provider came back empty, so synthesis always
// has at least minimal context for an invoked adapter.
func syntheticRecord(name, query string) types.ResearchRecord {
	return types.ResearchRecord{
		Title:   fmt.Sprintf("General information: %s", query),
		Authors: "",
		Date:    "n.d.",
		Source:  name,
		Link:    "#",
		Summary: fmt.Sprintf("No provider results were available for %q; this entry marks the %s search so the narrative can note the gap.", query, name),
		Kind:    types.KindWebContent,
	}
}

// limit truncates a record list to max entries (max <= 0 keeps all).
func limit(records []types.ResearchRecord, max int) []types.ResearchRecord {
	if max > 0 && len(records) > max {
		return records[:max]
	}
	return records
}

// minRecords returns the configured secondary-source threshold.
func minRecords(cfg types.AdapterConfig) int {
	if cfg.MinRecords > 0 {
		return cfg.MinRecords
	}
	return 3
}

// maxRecords returns the configured per-provider record cap.
func maxRecords(cfg types.AdapterConfig) int {
	if cfg.MaxRecords > 0 {
		return cfg.MaxRecords
	}
	return 5
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
