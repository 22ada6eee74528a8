package registration

import (
	"sync"
	"time"

	"github.com/secondhandhub/marketplace/internal/models"
)

// PendingStore is the process-wide map of unverified signups keyed by email.
// Entries live until consumed by verification or the process restarts; there
// is no TTL sweep, the verification link expiry bounds their useful life.
type PendingStore struct {
	mu      sync.RWMutex
	pending map[string]models.PendingRegistration
}

func NewPendingStore() *PendingStore {
	return &PendingStore{pending: make(map[string]models.PendingRegistration)}
}

// Put stores the record, overwriting any previous one for the same email
func (s *PendingStore) Put(record models.PendingRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.pending[record.Email] = record
}

func (s *PendingStore) Get(email string) (models.PendingRegistration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.pending[email]
	return record, ok
}

func (s *PendingStore) Remove(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, email)
}

func (s *PendingStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pending)
}
