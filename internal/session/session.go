// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session tracks per-session research progress. The store is
// injected into the orchestrator and written to by every component
// handling that session's request; a status endpoint reads it.
package session

import "github.com/pdiddy/cre-research/pkg/types"

// Store is the session progress contract. Implementations must be
// safe under concurrent writers: adapters log from separate
// goroutines during fan-out.
type Store interface {
	// Begin creates the session, or resets an existing one to an
	// empty, incomplete state.
	Begin(id string)

	// Log appends an event if the session exists; it is a silent
	// no-op for unknown ids so callers never have to check first.
	Log(id, step, source string)

	// Complete marks the session finished.
	Complete(id string)

	// Get returns the current progress, or a zero value for unknown
	// ids.
	Get(id string) types.SessionProgress
}
