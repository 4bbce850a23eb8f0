package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardData crosses every hop of the chain by value. The PAN is the
// routing key; it must never be logged or stored unmasked outside the
// issuer boundary.
type CardData struct {
	PAN            string `json:"pan"`
	SecurityCode   string `json:"securityCode"`
	CardHolderName string `json:"cardHolderName"`
	ExpiryDate     string `json:"expiryDate"`
}

// PCCPaymentRequest is the acquirer-to-PCC wire contract. The
// AcquirerOrderID is the correlation key for the whole bank chain; a
// resubmission with the same id replays the stored resolution.
type PCCPaymentRequest struct {
	AcquirerOrderID   string          `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time       `json:"acquirerTimestamp"`
	CardData          CardData        `json:"cardData"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	MerchantID        string          `json:"merchantId"`
}

// PCCPaymentResponse mirrors the issuer's decision back to the acquirer
// together with the original acquirer correlation fields, so the
// acquirer needs no extra lookup to match response to request.
type PCCPaymentResponse struct {
	Success           bool              `json:"success"`
	TransactionID     string            `json:"transactionId,omitempty"`
	IssuerOrderID     string            `json:"issuerOrderId,omitempty"`
	IssuerTimestamp   *time.Time        `json:"issuerTimestamp,omitempty"`
	ErrorMessage      string            `json:"errorMessage,omitempty"`
	StatusMessage     string            `json:"statusMessage,omitempty"`
	Status            TransactionStatus `json:"status"`
	AcquirerOrderID   string            `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time         `json:"acquirerTimestamp"`
}

// IssuerBankRequest is the PCC-to-issuer wire contract.
type IssuerBankRequest struct {
	AcquirerOrderID   string          `json:"acquirerOrderId"`
	AcquirerTimestamp time.Time       `json:"acquirerTimestamp"`
	PAN               string          `json:"pan"`
	SecurityCode      string          `json:"securityCode"`
	CardHolderName    string          `json:"cardHolderName"`
	ExpiryDate        string          `json:"expiryDate"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	MerchantID        string          `json:"merchantId"`
}

// IssuerBankResponse carries the issuer's decision. An IssuerOrderID is
// minted for every syntactically valid request, declines included, so
// every attempt is auditable on the issuer side.
type IssuerBankResponse struct {
	Success         bool              `json:"success"`
	IssuerOrderID   string            `json:"issuerOrderId,omitempty"`
	IssuerTimestamp *time.Time        `json:"issuerTimestamp,omitempty"`
	Status          TransactionStatus `json:"status"`
	StatusMessage   string            `json:"statusMessage,omitempty"`
}
