package issuer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/card"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

// DeclineInvalidCard is the single decline message for any card
// mismatch. A wrong security code and a wholly unknown PAN must be
// indistinguishable to the caller, otherwise the issuer becomes a
// card-enumeration oracle.
const DeclineInvalidCard = "card not found or card data invalid"

// ErrValidation marks a syntactically malformed request; no issuer
// order is minted for it.
var ErrValidation = errors.New("invalid issuer request")

// Order is the issuer's own record of a received request. One is minted
// for every syntactically valid request, accepted or declined, so every
// attempt is auditable. Immutable after creation.
type Order struct {
	IssuerOrderID   string
	IssuerTimestamp time.Time
	AcquirerOrderID string
	MaskedPAN       string
	Amount          decimal.Decimal
	Currency        string
	Success         bool
	Status          types.TransactionStatus
	StatusMessage   string
}

// OrderStore keeps issuer orders keyed by their own id.
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

	s.items[o.IssuerOrderID] = o
}

func (s *OrderStore) Get(issuerOrderID string) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.items[issuerOrderID]
	return o, ok
}

// Service is the issuer adapter: it matches the card against the
// bank's own records, lets the authorizer decide, and answers
// synchronously.
type Service struct {
	Vault      Vault
	Authorizer Authorizer
	Orders     *OrderStore

	now func() time.Time
}

func NewService(vault Vault, authorizer Authorizer) *Service {
	return &Service{
		Vault:      vault,
		Authorizer: authorizer,
		Orders:     NewOrderStore(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Process validates, decides and records one inbound request. The first
// failing check wins; all card-data mismatches collapse into one
// generic decline.
func (s *Service) Process(ctx context.Context, req types.IssuerBankRequest) (types.IssuerBankResponse, error) {
	if err := validateRequest(req); err != nil {
		return types.IssuerBankResponse{}, err
	}

	order := Order{
		IssuerOrderID:   uuid.NewString(),
		IssuerTimestamp: s.now(),
		AcquirerOrderID: req.AcquirerOrderID,
		MaskedPAN:       card.Mask(req.PAN),
		Amount:          req.Amount,
		Currency:        req.Currency,
	}

	stored, ok := s.Vault.Lookup(req.PAN)
	if !ok || !cardMatches(stored, req) {
		return s.decline(order, DeclineInvalidCard), nil
	}
	// An expired card declines with the same generic message as an
	// unknown one; the expiry date is card data like any other field.
	if expired, err := card.Expired(stored.ExpiryDate, s.now()); err != nil || expired {
		return s.decline(order, DeclineInvalidCard), nil
	}

	if err := s.Authorizer.Authorize(stored, req.Amount, req.Currency); err != nil {
		log.Printf("issuer: declined %s (%s): %v", order.IssuerOrderID, order.MaskedPAN, err)
		return s.decline(order, err.Error()), nil
	}

	order.Success = true
	order.Status = types.StatusCompleted
	s.Orders.Put(order)
	log.Printf("issuer: approved %s (%s)", order.IssuerOrderID, order.MaskedPAN)

	return types.IssuerBankResponse{
		Success:         true,
		IssuerOrderID:   order.IssuerOrderID,
		IssuerTimestamp: &order.IssuerTimestamp,
		Status:          types.StatusCompleted,
	}, nil
}

func (s *Service) decline(order Order, message string) types.IssuerBankResponse {
	order.Success = false
	order.Status = types.StatusFailed
	order.StatusMessage = message
	s.Orders.Put(order)

	return types.IssuerBankResponse{
		Success:         false,
		IssuerOrderID:   order.IssuerOrderID,
		IssuerTimestamp: &order.IssuerTimestamp,
		Status:          types.StatusFailed,
		StatusMessage:   message,
	}
}

// cardMatches requires an exact match on all four card fields.
func cardMatches(stored StoredCard, req types.IssuerBankRequest) bool {
	return stored.PAN == req.PAN &&
		stored.SecurityCode == req.SecurityCode &&
		stored.CardHolderName == req.CardHolderName &&
		stored.ExpiryDate == req.ExpiryDate
}

func validateRequest(req types.IssuerBankRequest) error {
	if strings.TrimSpace(req.AcquirerOrderID) == "" {
		return fmt.Errorf("%w: missing acquirerOrderId", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if err := card.Validate(types.CardData{
		PAN:            req.PAN,
		SecurityCode:   req.SecurityCode,
		CardHolderName: req.CardHolderName,
		ExpiryDate:     req.ExpiryDate,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
