// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"
	"time"

	"github.com/pdiddy/cre-research/pkg/types"
)

const defaultTTL = 30 * time.Minute

// entry pairs a session's progress with its last-touched time for
// TTL eviction.
type entry struct {
	progress types.SessionProgress
	touched  time.Time
}

// MemoryStore is the in-memory Store implementation. Sessions expire
// after an idle TTL so the map does not grow with abandoned pollers.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once

	// now is replaced in tests to control eviction.
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given idle TTL (zero
// uses the 30 minute default) and starts its eviction janitor.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go s.janitor()
	return s
}

// Close stops the eviction janitor. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Begin resets the session to an empty, incomplete state.
func (s *MemoryStore) Begin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{touched: s.now()}
}

// Log appends an event with the current timestamp. Unknown sessions
// are ignored.
func (s *MemoryStore) Log(id, step, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return
	}
	now := s.now()
	e.progress.Events = append(e.progress.Events, types.ProgressEvent{
		Step:      step,
		Source:    source,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	e.touched = now
}

// Complete marks the session finished. Unknown sessions are ignored.
func (s *MemoryStore) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.progress.Complete = true
		e.touched = s.now()
	}
}

// Get returns a copy of the session's progress, or a zero value for
// unknown ids. The event slice is copied so pollers never observe a
// concurrent append.
func (s *MemoryStore) Get(id string) types.SessionProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return types.SessionProgress{}
	}
	out := types.SessionProgress{Complete: e.progress.Complete}
	if len(e.progress.Events) > 0 {
		out.Events = make([]types.ProgressEvent, len(e.progress.Events))
		copy(out.Events, e.progress.Events)
	}
	return out
}

// janitor evicts idle sessions every ttl/2.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evict()
		}
	}
}

func (s *MemoryStore) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.sessions {
		if e.touched.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
