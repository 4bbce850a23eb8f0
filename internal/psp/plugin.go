package psp

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

// Request is the merchant-facing payment request the façade dispatches
// to a plugin.
type Request struct {
	WebShopClientID string          `json:"webShopClientId"`
	PaymentType     string          `json:"paymentType"`
	MerchantOrderID string          `json:"merchantOrderId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CardData        *types.CardData `json:"cardData,omitempty"`
}

// PluginResult is what a plugin reports back: the downstream
// correlation id plus whatever the payer needs next (redirect, QR).
type PluginResult struct {
	ExternalTransactionID string
	Status                types.TransactionStatus
	StatusMessage         string
	RedirectURL           string
	QRCodePNG             []byte
}

// Plugin executes one payment method. Execute runs strictly after the
// façade has persisted the Pending PSP transaction.
type Plugin interface {
	Type() string
	Execute(ctx context.Context, pspTransactionID string, req Request) (PluginResult, error)
}
