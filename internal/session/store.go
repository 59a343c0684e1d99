// Package session holds per-sender conversation state for the lifetime of
// the process. Nothing here is persisted: a restart forgets every
// selection and voice flag.
package session

import (
	"sync"
	"time"

	"github.com/user/cartable/internal/types"
)

type entry struct {
	sess    types.Session
	touched time.Time
}

// Store is an in-memory session store keyed by sender. It is safe for
// concurrent use; per-sender read-modify-write cycles are additionally
// serialized by the gateway's sender lanes.
type Store struct {
	mu      sync.Mutex
	entries map[types.SenderKey]*entry
	clock   func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[types.SenderKey]*entry),
		clock:   time.Now,
	}
}

// Get returns the sender's session, creating an empty one on first access.
func (s *Store) Get(sender types.SenderKey) types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sender]
	if !ok {
		e = &entry{}
		s.entries[sender] = e
	}
	e.touched = s.clock()
	return e.sess
}

// Put stores the sender's session.
func (s *Store) Put(sender types.SenderKey, sess types.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sender] = &entry{sess: sess, touched: s.clock()}
}

// Clear resets the sender's selection and voice flags without discarding
// the entry. The last message text is kept so follow-up subject recall
// still works after a reset. Clearing an unknown sender is a no-op.
func (s *Store) Clear(sender types.SenderKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[sender]; ok {
		e.sess = types.Session{LastMessage: e.sess.LastMessage}
		e.touched = s.clock()
	}
}

// Len returns the number of tracked senders.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts sessions idle for longer than ttl and returns how many were
// removed. Eviction bounds memory; it is an operational concern, not a
// correctness one, since an evicted sender simply starts a fresh session.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock().Add(-ttl)
	removed := 0
	for k, e := range s.entries {
		if e.touched.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
