package psp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

var (
	ErrValidation         = errors.New("invalid payment request")
	ErrUnknownPaymentType = errors.New("unknown payment type")
)

// InitiateResponse is what the merchant gets back: the PSP transaction
// id to poll on, plus the payer's next step when there is one.
type InitiateResponse struct {
	PSPTransactionID string                  `json:"pspTransactionId"`
	Status           types.TransactionStatus `json:"status"`
	StatusMessage    string                  `json:"statusMessage,omitempty"`
	RedirectURL      string                  `json:"redirectUrl,omitempty"`
	QRCode           string                  `json:"qrCode,omitempty"` // base64 PNG
}

// Service is the PSP façade. It is the only component that mints
// PSPTransactionIds, and it persists the Pending record before any
// plugin call so a crash mid-call cannot lose the attempt.
type Service struct {
	Store   TransactionStore
	plugins map[string]Plugin

	now func() time.Time
}

func NewService(store TransactionStore, plugins ...Plugin) *Service {
	byType := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		byType[p.Type()] = p
	}
	return &Service{
		Store:   store,
		plugins: byType,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Initiate(ctx context.Context, req Request) (InitiateResponse, error) {
	if err := validateRequest(req); err != nil {
		return InitiateResponse{}, err
	}
	plugin, ok := s.plugins[req.PaymentType]
	if !ok {
		return InitiateResponse{}, fmt.Errorf("%w: %q", ErrUnknownPaymentType, req.PaymentType)
	}

	tx := Transaction{
		PSPTransactionID: uuid.NewString(),
		WebShopClientID:  req.WebShopClientID,
		PaymentType:      req.PaymentType,
		MerchantOrderID:  req.MerchantOrderID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Status:           types.StatusPending,
		CreatedAt:        s.now(),
	}
	// Commit point: the Pending record must exist before the plugin
	// runs, whatever happens downstream.
	if err := s.Store.Create(tx); err != nil {
		return InitiateResponse{}, fmt.Errorf("persist psp transaction: %w", err)
	}

	result, err := plugin.Execute(ctx, tx.PSPTransactionID, req)
	if err != nil {
		log.Printf("psp: %s plugin failed for %s: %v", req.PaymentType, tx.PSPTransactionID, err)
		tx.Status = types.StatusFailed
		tx.StatusMessage = "payment could not be initiated"
		s.update(tx)
		return InitiateResponse{
			PSPTransactionID: tx.PSPTransactionID,
			Status:           tx.Status,
			StatusMessage:    tx.StatusMessage,
		}, nil
	}

	tx.ExternalTransactionID = result.ExternalTransactionID
	tx.Status = result.Status
	tx.StatusMessage = result.StatusMessage
	if result.Status.IsTerminal() {
		completedAt := s.now()
		tx.CompletedAt = &completedAt
	}
	s.update(tx)

	resp := InitiateResponse{
		PSPTransactionID: tx.PSPTransactionID,
		Status:           tx.Status,
		StatusMessage:    tx.StatusMessage,
		RedirectURL:      result.RedirectURL,
	}
	if len(result.QRCodePNG) > 0 {
		resp.QRCode = base64.StdEncoding.EncodeToString(result.QRCodePNG)
	}
	return resp, nil
}

// GetTransaction returns the PSP record by its outward-facing id.
func (s *Service) GetTransaction(pspTransactionID string) (Transaction, error) {
	return s.Store.Get(pspTransactionID)
}

func (s *Service) update(tx Transaction) {
	if err := s.Store.Update(tx); err != nil {
		log.Printf("psp: update %s: %v", tx.PSPTransactionID, err)
	}
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.WebShopClientID) == "" {
		return fmt.Errorf("%w: missing webShopClientId", ErrValidation)
	}
	if strings.TrimSpace(req.MerchantOrderID) == "" {
		return fmt.Errorf("%w: missing merchantOrderId", ErrValidation)
	}
	if strings.TrimSpace(req.PaymentType) == "" {
		return fmt.Errorf("%w: missing paymentType", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if strings.TrimSpace(req.Currency) == "" {
		return fmt.Errorf("%w: missing currency", ErrValidation)
	}
	return nil
}
