package acquirer

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/card"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

// MsgPCCUnavailable is the error message for any transport failure or
// timeout between acquirer and PCC.
const MsgPCCUnavailable = "PCC communication failed/timeout"

// Result is what the acquirer hands back to the PSP. It is always a
// structured value; no failure mode past the submission boundary
// surfaces as an error.
type Result struct {
	Success           bool                    `json:"success"`
	Status            types.TransactionStatus `json:"status"`
	ErrorMessage      string                  `json:"errorMessage,omitempty"`
	StatusMessage     string                  `json:"statusMessage,omitempty"`
	AcquirerOrderID   string                  `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time               `json:"acquirerTimestamp"`
	IssuerOrderID     string                  `json:"issuerOrderId,omitempty"`
	IssuerTimestamp   *time.Time              `json:"issuerTimestamp,omitempty"`
}

// Service is the merchant's bank: it mints the acquirer order that
// correlates the whole bank chain and forwards it to the PCC.
type Service struct {
	PCC    PCCClient
	Orders *OrderStore

	now func() time.Time
}

func NewService(pcc PCCClient) *Service {
	return &Service{
		PCC:    pcc,
		Orders: NewOrderStore(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCardPayment creates the acquirer order and runs it through the
// PCC. The order id and timestamp are set here, once; everything
// downstream correlates on them.
func (s *Service) SubmitCardPayment(ctx context.Context, paymentID, merchantID string, amount decimal.Decimal, currency string, cardData types.CardData) Result {
	order := Order{
		AcquirerOrderID:   uuid.NewString(),
		AcquirerTimestamp: s.now(),
		MerchantID:        merchantID,
		PaymentID:         paymentID,
		Amount:            amount,
		Currency:          currency,
		MaskedPAN:         card.Mask(cardData.PAN),
		Status:            types.StatusPending,
	}
	s.Orders.Put(order)

	req := types.PCCPaymentRequest{
		AcquirerOrderID:   order.AcquirerOrderID,
		AcquirerTimestamp: order.AcquirerTimestamp,
		CardData:          cardData,
		Amount:            amount,
		Currency:          currency,
		MerchantID:        merchantID,
	}

	resp, err := s.PCC.ProcessPayment(ctx, req)
	if err != nil {
		log.Printf("acquirer: order %s: %v", order.AcquirerOrderID, err)
		order.Status = types.StatusFailed
		order.StatusMessage = MsgPCCUnavailable
		s.Orders.Put(order)
		return Result{
			Success:           false,
			Status:            types.StatusFailed,
			ErrorMessage:      MsgPCCUnavailable,
			AcquirerOrderID:   order.AcquirerOrderID,
			AcquirerTimestamp: order.AcquirerTimestamp,
		}
	}

	order.Status = resp.Status
	order.StatusMessage = resp.StatusMessage
	order.IssuerOrderID = resp.IssuerOrderID
	order.IssuerTimestamp = resp.IssuerTimestamp
	s.Orders.Put(order)

	// The PCC response already carries our correlation fields; pass it
	// through unchanged apart from local bookkeeping.
	return Result{
		Success:           resp.Success,
		Status:            resp.Status,
		ErrorMessage:      resp.ErrorMessage,
		StatusMessage:     resp.StatusMessage,
		AcquirerOrderID:   resp.AcquirerOrderID,
		AcquirerTimestamp: resp.AcquirerTimestamp,
		IssuerOrderID:     resp.IssuerOrderID,
		IssuerTimestamp:   resp.IssuerTimestamp,
	}
}

// GetOrder returns the acquirer's local record for an order id.
func (s *Service) GetOrder(acquirerOrderID string) (Order, bool) {
	return s.Orders.Get(acquirerOrderID)
}
