package acquirer

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

// Order is the acquirer's record of one payment attempt. The id and
// timestamp are generated exactly once, before the first forward to the
// PCC, so a retry reuses them and replays instead of double-charging.
type Order struct {
	AcquirerOrderID   string
	AcquirerTimestamp time.Time
	MerchantID        string
	PaymentID         string
	Amount            decimal.Decimal
	Currency          string
	MaskedPAN         string
	Status            types.TransactionStatus
	StatusMessage     string
	IssuerOrderID     string
	IssuerTimestamp   *time.Time
}

type OrderStore struct {
	mu    sync.Mutex
	items map[string]Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{items: make(map[string]Order)}
}

func (s *OrderStore) Put(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[o.AcquirerOrderID] = o
}

func (s *OrderStore) Get(acquirerOrderID string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.items[acquirerOrderID]
	return o, ok
}
