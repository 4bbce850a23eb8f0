package psp

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

var ErrNotFound = errors.New("psp transaction not found")

// Transaction is the PSP-level record. PSPTransactionID is the one
// identifier merchants and payers ever see; ExternalTransactionID is
// the downstream provider's id (acquirer order id, PayPal order id) and
// the two are correlated here and nowhere else.
type Transaction struct {
	PSPTransactionID      string
	WebShopClientID       string
	PaymentType           string
	MerchantOrderID       string
	Amount                decimal.Decimal
	Currency              string
	ExternalTransactionID string
	Status                types.TransactionStatus
	StatusMessage         string
	CreatedAt             time.Time
	CompletedAt           *time.Time
}

// TransactionStore persists PSP transactions. The façade writes the
// Pending row before any plugin runs, so a crash mid-call still leaves
// a discoverable record.
type TransactionStore interface {
	Create(tx Transaction) error
	Get(pspTransactionID string) (Transaction, error)
	Update(tx Transaction) error
}

type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Transaction)}
}

func (s *MemoryStore) Create(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[tx.PSPTransactionID]; exists {
		return errors.New("duplicate psp transaction id")
	}
	s.items[tx.PSPTransactionID] = tx
	return nil
}

func (s *MemoryStore) Get(pspTransactionID string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.items[pspTransactionID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (s *MemoryStore) Update(tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[tx.PSPTransactionID]; !ok {
		return ErrNotFound
	}
	s.items[tx.PSPTransactionID] = tx
	return nil
}
