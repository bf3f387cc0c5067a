// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProgressEvent is one step of a research session's progress log.
type ProgressEvent struct {
	// Step is a human-readable description of what is happening.
	Step string `json:"step" yaml:"step"`

	// Source names the adapter or provider emitting the event; empty
	// for orchestrator-level steps.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Timestamp is the event time in RFC 3339 format.
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// SessionProgress is the observable state of one research session,
// read by status pollers while the request executes.
type SessionProgress struct {
	Events   []ProgressEvent `json:"events" yaml:"events"`
	Complete bool            `json:"complete" yaml:"complete"`
}
