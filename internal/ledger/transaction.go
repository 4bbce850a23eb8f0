package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

// Transaction is the PCC's record of one payment attempt, keyed by the
// acquirer-generated correlation id. Rows are append-only: a row is
// created Pending and mutated exactly once, when the issuer's answer
// (or a routing/transport failure) resolves it. The PAN is stored
// masked; the ledger never sees the full number.
type Transaction struct {
	ID                string
	AcquirerOrderID   string
	AcquirerTimestamp time.Time
	IssuerOrderID     string
	IssuerTimestamp   *time.Time
	MaskedPAN         string
	Amount            decimal.Decimal
	Currency          string
	MerchantID        string
	Status            types.TransactionStatus
	StatusMessage     string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// Resolution carries the four fields that transition together when a
// transaction leaves Pending. Partial updates are not permitted.
type Resolution struct {
	Status          types.TransactionStatus
	IssuerOrderID   string
	IssuerTimestamp *time.Time
	StatusMessage   string
}
