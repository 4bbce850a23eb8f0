package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps transactions in a map guarded by a mutex. It is the
// default store for the simulated deployment and the reference for the
// atomicity semantics the DynamoDB store reproduces with conditional
// writes.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Transaction

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Transaction),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(ctx context.Context, tx Transaction) (Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[tx.AcquirerOrderID]; ok {
		return existing, false, nil
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	s.items[tx.AcquirerOrderID] = tx
	return tx, true, nil
}

func (s *MemoryStore) Get(ctx context.Context, acquirerOrderID string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.items[acquirerOrderID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, acquirerOrderID string, res Resolution) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.items[acquirerOrderID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	if tx.Status.IsTerminal() {
		return tx, ErrAlreadyResolved
	}

	now := s.now()
	tx.Status = res.Status
	tx.IssuerOrderID = res.IssuerOrderID
	tx.IssuerTimestamp = res.IssuerTimestamp
	tx.StatusMessage = res.StatusMessage
	tx.UpdatedAt = &now
	s.items[acquirerOrderID] = tx
	return tx, nil
}
