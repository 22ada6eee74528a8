package token

import (
	"sync"
	"time"
)

// RevokedSet is the process-wide set of revoked access token ids. It grows
// monotonically; expiry is stored with each id so past-expiry entries could
// be pruned later.
type RevokedSet struct {
	mu  sync.RWMutex
	ids map[string]time.Time
}

func NewRevokedSet() *RevokedSet {
	return &RevokedSet{ids: make(map[string]time.Time)}
}

func (s *RevokedSet) Add(tokenID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[tokenID] = expiresAt
}

func (s *RevokedSet) Contains(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[tokenID]
	return ok
}

func (s *RevokedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
