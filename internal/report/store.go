// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultTTL is how long an artifact stays downloadable when the
// config leaves it unset.
const defaultTTL = time.Hour

// Artifact is one stored report.
type Artifact struct {
	Filename string
	Content  string
	Created  time.Time
}

// Store holds report artifacts in memory, keyed by generated UUID,
// evicting them after a TTL.
type Store struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]Artifact

	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore starts a store whose janitor evicts expired artifacts in
// the background. Callers own the store and must Close it.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Store{
		ttl:   ttl,
		items: make(map[string]Artifact),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put stores an artifact and returns its download key.
func (s *Store) Put(a Artifact) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = a
	return id
}

// Get returns the artifact for a key if it is still live.
func (s *Store) Get(id string) (Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.items[id]
	if !ok || s.now().Sub(a.Created) > s.ttl {
		return Artifact{}, false
	}
	return a, true
}

// Close stops the janitor.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evict()
		case <-s.stop:
			return
		}
	}
}

// evict drops artifacts older than the TTL.
func (s *Store) evict() {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, a := range s.items {
		if a.Created.Before(cutoff) {
			delete(s.items, id)
		}
	}
}
