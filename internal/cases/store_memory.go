// Package cases records follow-up investigation cases for payments decided
// as review or block.
package cases

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Case is one investigation unit opened for a flagged payment.
type Case struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Reasons    []string  `json:"reasons"`
	CreatedAt  time.Time `json:"created_at"`
}

// InMemoryStore keeps cases in memory for the process lifetime.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases []Case
}

// NewInMemoryStore creates an empty case store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// CreateCase opens a case for customerID and returns its id.
func (s *InMemoryStore) CreateCase(_ context.Context, customerID string, reasons []string) (string, error) {
	c := Case{
		ID:         "case_" + uuid.NewString()[:8],
		CustomerID: customerID,
		Reasons:    append([]string(nil), reasons...),
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = append(s.cases, c)
	return c.ID, nil
}

// List returns a snapshot of all recorded cases.
func (s *InMemoryStore) List(_ context.Context) []Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Case, len(s.cases))
	copy(out, s.cases)
	return out
}
