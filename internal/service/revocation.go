package service

import (
	"sync"
	"time"
)

// revocationSet is the process-lifetime set of logged-out tokens. Entries
// carry the token's own expiry so they can be pruned once the token would
// be rejected as expired anyway. Not persisted and not shared across
// instances.
type revocationSet struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func newRevocationSet() *revocationSet {
	return &revocationSet{tokens: make(map[string]time.Time)}
}

// add revokes token until expiresAt. Re-adding is a no-op in effect.
func (s *revocationSet) add(token string, expiresAt time.Time) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for t, exp := range s.tokens {
		if exp.Before(now) {
			delete(s.tokens, t)
		}
	}
	s.tokens[token] = expiresAt
}

func (s *revocationSet) contains(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}
