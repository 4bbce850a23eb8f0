package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/pay-theory/dynamorm"
	"github.com/pay-theory/dynamorm/pkg/core"
	dynamoerrors "github.com/pay-theory/dynamorm/pkg/errors"
	"github.com/pay-theory/dynamorm/pkg/session"
	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

// dynamoTransaction is the DynamoDB shape of a ledger row. Timestamps
// are RFC3339 strings so an empty value can stand in for "not yet
// resolved"; Amount is a string to keep decimal exactness.
type dynamoTransaction struct {
	AcquirerOrderID   string `dynamorm:"pk" json:"acquirer_order_id"`
	ID                string `dynamorm:"index:gsi-transaction" json:"id"`
	AcquirerTimestamp string `json:"acquirer_timestamp"`
	IssuerOrderID     string `json:"issuer_order_id,omitempty"`
	IssuerTimestamp   string `json:"issuer_timestamp,omitempty"`
	MaskedPAN         string `json:"masked_pan"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	MerchantID        string `dynamorm:"index:gsi-merchant" json:"merchant_id"`
	Status            int    `json:"status"`
	StatusMessage     string `json:"status_message,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

// dynamoDB is the slice of the dynamorm API the store uses.
type dynamoDB interface {
	Model(model any) core.Query
	EnsureTable(model any) error
}

// DynamoStore persists the ledger in DynamoDB through dynamorm. Resolve
// relies on a conditional update (Status = Pending) so the
// update-if-unresolved contract holds without any process-local lock.
type DynamoStore struct {
	db  dynamoDB
	now func() time.Time
}

// NewDynamoStore connects to DynamoDB in the given region. A non-empty
// endpoint points the store at a local DynamoDB for the simulated
// deployment.
func NewDynamoStore(region, endpoint string) (*DynamoStore, error) {
	db, err := dynamorm.New(session.Config{Region: region, Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("connect dynamodb: %w", err)
	}
	return &DynamoStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// EnsureTable creates the ledger table when it does not exist yet.
func (s *DynamoStore) EnsureTable() error {
	return s.db.EnsureTable(&dynamoTransaction{})
}

func (s *DynamoStore) Create(ctx context.Context, tx Transaction) (Transaction, bool, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now()
	}
	rec := toDynamo(tx)

	err := s.db.Model(&rec).WithContext(ctx).Create()
	if err == nil {
		return tx, true, nil
	}
	if !dynamoerrors.IsConditionFailed(err) {
		return Transaction{}, false, fmt.Errorf("create transaction %s: %w", tx.AcquirerOrderID, err)
	}

	existing, getErr := s.Get(ctx, tx.AcquirerOrderID)
	if getErr != nil {
		return Transaction{}, false, fmt.Errorf("read existing transaction %s: %w", tx.AcquirerOrderID, getErr)
	}
	return existing, false, nil
}

func (s *DynamoStore) Get(ctx context.Context, acquirerOrderID string) (Transaction, error) {
	var rec dynamoTransaction
	err := s.db.Model(&dynamoTransaction{}).
		WithContext(ctx).
		Where("AcquirerOrderID", "=", acquirerOrderID).
		First(&rec)
	if err != nil {
		if dynamoerrors.IsNotFound(err) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, fmt.Errorf("get transaction %s: %w", acquirerOrderID, err)
	}
	return fromDynamo(rec)
}

func (s *DynamoStore) Resolve(ctx context.Context, acquirerOrderID string, res Resolution) (Transaction, error) {
	issuerTS := ""
	if res.IssuerTimestamp != nil {
		issuerTS = res.IssuerTimestamp.UTC().Format(time.RFC3339Nano)
	}
	updatedAt := s.now().Format(time.RFC3339Nano)

	err := s.db.Model(&dynamoTransaction{AcquirerOrderID: acquirerOrderID}).
		WithContext(ctx).
		UpdateBuilder().
		Set("Status", int(res.Status)).
		Set("IssuerOrderID", res.IssuerOrderID).
		Set("IssuerTimestamp", issuerTS).
		Set("StatusMessage", res.StatusMessage).
		Set("UpdatedAt", updatedAt).
		Condition("Status", "=", int(types.StatusPending)).
		Execute()

	switch {
	case err == nil:
		return s.Get(ctx, acquirerOrderID)
	case dynamoerrors.IsConditionFailed(err):
		stored, getErr := s.Get(ctx, acquirerOrderID)
		if getErr != nil {
			return Transaction{}, getErr
		}
		return stored, ErrAlreadyResolved
	case dynamoerrors.IsNotFound(err):
		return Transaction{}, ErrNotFound
	default:
		return Transaction{}, fmt.Errorf("resolve transaction %s: %w", acquirerOrderID, err)
	}
}

func toDynamo(tx Transaction) dynamoTransaction {
	rec := dynamoTransaction{
		AcquirerOrderID:   tx.AcquirerOrderID,
		ID:                tx.ID,
		AcquirerTimestamp: tx.AcquirerTimestamp.UTC().Format(time.RFC3339Nano),
		IssuerOrderID:     tx.IssuerOrderID,
		MaskedPAN:         tx.MaskedPAN,
		Amount:            tx.Amount.String(),
		Currency:          tx.Currency,
		MerchantID:        tx.MerchantID,
		Status:            int(tx.Status),
		StatusMessage:     tx.StatusMessage,
		CreatedAt:         tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if tx.IssuerTimestamp != nil {
		rec.IssuerTimestamp = tx.IssuerTimestamp.UTC().Format(time.RFC3339Nano)
	}
	if tx.UpdatedAt != nil {
		rec.UpdatedAt = tx.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

func fromDynamo(rec dynamoTransaction) (Transaction, error) {
	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: bad amount %q: %w", rec.AcquirerOrderID, rec.Amount, err)
	}
	tx := Transaction{
		ID:              rec.ID,
		AcquirerOrderID: rec.AcquirerOrderID,
		IssuerOrderID:   rec.IssuerOrderID,
		MaskedPAN:       rec.MaskedPAN,
		Amount:          amount,
		Currency:        rec.Currency,
		MerchantID:      rec.MerchantID,
		Status:          types.TransactionStatus(rec.Status),
		StatusMessage:   rec.StatusMessage,
	}
	if tx.AcquirerTimestamp, err = parseTS(rec.AcquirerTimestamp); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", rec.AcquirerOrderID, err)
	}
	if tx.CreatedAt, err = parseTS(rec.CreatedAt); err != nil {
		return Transaction{}, fmt.Errorf("transaction %s: %w", rec.AcquirerOrderID, err)
	}
	if rec.IssuerTimestamp != "" {
		ts, err := parseTS(rec.IssuerTimestamp)
		if err != nil {
			return Transaction{}, fmt.Errorf("transaction %s: %w", rec.AcquirerOrderID, err)
		}
		tx.IssuerTimestamp = &ts
	}
	if rec.UpdatedAt != "" {
		ts, err := parseTS(rec.UpdatedAt)
		if err != nil {
			return Transaction{}, fmt.Errorf("transaction %s: %w", rec.AcquirerOrderID, err)
		}
		tx.UpdatedAt = &ts
	}
	return tx, nil
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}
