package pcc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/halcyonpay/cardswitch/internal/card"
	"github.com/halcyonpay/cardswitch/internal/ledger"
	"github.com/halcyonpay/cardswitch/internal/routing"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

// Messages written into the ledger on the PCC's own failure paths. A
// transport failure must stay distinguishable from a business decline,
// so these never overlap with issuer status messages.
const (
	MsgIssuerNotFound    = "Issuer bank not found for this card"
	MsgIssuerUnavailable = "Issuer bank service unavailable"
	MsgInternalError     = "Payment could not be processed"
)

// ErrValidation marks a malformed request, rejected before any ledger
// row is created.
var ErrValidation = errors.New("invalid payment request")

// IssuerClient forwards a request to a resolved issuer bank endpoint.
type IssuerClient interface {
	Process(ctx context.Context, issuerURL string, req types.IssuerBankRequest) (types.IssuerBankResponse, error)
}

// Service is the PCC router/relay: it records the transaction, resolves
// the issuer bank by BIN, forwards the request and translates the
// issuer's answer into the outward response contract. All processing
// for one AcquirerOrderID serializes on a per-key lock, so a duplicate
// submission either replays the stored resolution or waits for the
// in-flight attempt to finish and then observes it.
type Service struct {
	Store  ledger.TransactionStore
	Router *routing.Router
	Issuer IssuerClient

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(store ledger.TransactionStore, router *routing.Router, issuer IssuerClient) *Service {
	return &Service{
		Store:  store,
		Router: router,
		Issuer: issuer,
		locks:  make(map[string]*sync.Mutex),
	}
}

// ProcessPayment runs the record/route/forward/resolve sequence. The
// returned error is non-nil only for validation failures; every other
// outcome, issuer declines and downstream outages included, comes back
// as a structured response.
func (s *Service) ProcessPayment(ctx context.Context, req types.PCCPaymentRequest) (types.PCCPaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return types.PCCPaymentResponse{}, err
	}

	unlock := s.lockOrder(req.AcquirerOrderID)
	defer unlock()

	stored, created, err := s.Store.Create(ctx, ledger.Transaction{
		ID:                uuid.NewString(),
		AcquirerOrderID:   req.AcquirerOrderID,
		AcquirerTimestamp: req.AcquirerTimestamp,
		MaskedPAN:         card.Mask(req.CardData.PAN),
		Amount:            req.Amount,
		Currency:          req.Currency,
		MerchantID:        req.MerchantID,
		Status:            types.StatusPending,
	})
	if err != nil {
		log.Printf("pcc: record %s: %v", req.AcquirerOrderID, err)
		return internalFailure(req), nil
	}
	if !created && stored.Status.IsTerminal() {
		// Idempotent replay: the stored resolution answers the retry.
		return responseFrom(stored), nil
	}
	// A non-terminal existing row means an earlier attempt died before
	// resolving; this attempt drives it to a terminal state.

	issuerURL, err := s.Router.Resolve(req.CardData.PAN)
	if err != nil {
		return s.finalize(ctx, req.AcquirerOrderID, ledger.Resolution{
			Status:        types.StatusFailed,
			StatusMessage: MsgIssuerNotFound,
		}), nil
	}

	issuerResp, err := s.Issuer.Process(ctx, issuerURL, issuerRequest(req))
	if err != nil {
		log.Printf("pcc: forward %s to issuer: %v", req.AcquirerOrderID, err)
		return s.finalize(ctx, req.AcquirerOrderID, ledger.Resolution{
			Status:        types.StatusFailed,
			StatusMessage: MsgIssuerUnavailable,
		}), nil
	}

	status := issuerResp.Status
	if !status.IsTerminal() {
		// A well-formed issuer response must settle the attempt.
		log.Printf("pcc: issuer returned non-terminal status %s for %s", status, req.AcquirerOrderID)
		status = types.StatusFailed
	}
	return s.finalize(ctx, req.AcquirerOrderID, ledger.Resolution{
		Status:          status,
		IssuerOrderID:   issuerResp.IssuerOrderID,
		IssuerTimestamp: issuerResp.IssuerTimestamp,
		StatusMessage:   issuerResp.StatusMessage,
	}), nil
}

// GetTransaction returns the ledger row for the correlation id.
func (s *Service) GetTransaction(ctx context.Context, acquirerOrderID string) (ledger.Transaction, error) {
	return s.Store.Get(ctx, acquirerOrderID)
}

// finalize applies the resolution atomically. Losing the race to an
// earlier resolver is not an error: the stored resolution is the answer.
func (s *Service) finalize(ctx context.Context, acquirerOrderID string, res ledger.Resolution) types.PCCPaymentResponse {
	resolved, err := s.Store.Resolve(ctx, acquirerOrderID, res)
	if err != nil && !errors.Is(err, ledger.ErrAlreadyResolved) {
		log.Printf("pcc: resolve %s: %v", acquirerOrderID, err)
		return types.PCCPaymentResponse{
			Success:         false,
			Status:          types.StatusFailed,
			ErrorMessage:    MsgInternalError,
			AcquirerOrderID: acquirerOrderID,
		}
	}
	return responseFrom(resolved)
}

// lockOrder serializes processing per acquirer order id. Locks live for
// the life of the process, like the ledger rows they guard: one mutex
// per order id ever seen, never released. A bounded deployment would
// reference-count or shard these; the simulated one keeps the map flat
// so a replayed order id always meets the same lock.
func (s *Service) lockOrder(acquirerOrderID string) func() {
	s.mu.Lock()
	l, ok := s.locks[acquirerOrderID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[acquirerOrderID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func responseFrom(tx ledger.Transaction) types.PCCPaymentResponse {
	resp := types.PCCPaymentResponse{
		Success:           tx.Status == types.StatusCompleted,
		TransactionID:     tx.ID,
		IssuerOrderID:     tx.IssuerOrderID,
		IssuerTimestamp:   tx.IssuerTimestamp,
		StatusMessage:     tx.StatusMessage,
		Status:            tx.Status,
		AcquirerOrderID:   tx.AcquirerOrderID,
		AcquirerTimestamp: tx.AcquirerTimestamp,
	}
	if !resp.Success {
		resp.ErrorMessage = tx.StatusMessage
	}
	return resp
}

func internalFailure(req types.PCCPaymentRequest) types.PCCPaymentResponse {
	return types.PCCPaymentResponse{
		Success:           false,
		Status:            types.StatusFailed,
		ErrorMessage:      MsgInternalError,
		AcquirerOrderID:   req.AcquirerOrderID,
		AcquirerTimestamp: req.AcquirerTimestamp,
	}
}

func issuerRequest(req types.PCCPaymentRequest) types.IssuerBankRequest {
	return types.IssuerBankRequest{
		AcquirerOrderID:   req.AcquirerOrderID,
		AcquirerTimestamp: req.AcquirerTimestamp,
		PAN:               req.CardData.PAN,
		SecurityCode:      req.CardData.SecurityCode,
		CardHolderName:    req.CardData.CardHolderName,
		ExpiryDate:        req.CardData.ExpiryDate,
		Amount:            req.Amount,
		Currency:          req.Currency,
		MerchantID:        req.MerchantID,
	}
}

func validateRequest(req types.PCCPaymentRequest) error {
	if strings.TrimSpace(req.AcquirerOrderID) == "" {
		return fmt.Errorf("%w: missing acquirerOrderId", ErrValidation)
	}
	if req.AcquirerTimestamp.IsZero() {
		return fmt.Errorf("%w: missing acquirerTimestamp", ErrValidation)
	}
	if strings.TrimSpace(req.MerchantID) == "" {
		return fmt.Errorf("%w: missing merchantId", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return fmt.Errorf("%w: missing currency", ErrValidation)
	}
	if err := card.Validate(req.CardData); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
