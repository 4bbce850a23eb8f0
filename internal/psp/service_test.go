package psp

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonpay/cardswitch/internal/provider"
	"github.com/halcyonpay/cardswitch/internal/qr"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

// recordingPlugin captures what the store held at the moment Execute
// ran, which is how the persist-before-plugin ordering is observable.
type recordingPlugin struct {
	typ      string
	result   PluginResult
	err      error
	observed []Transaction
	store    TransactionStore
}

func (p *recordingPlugin) Type() string { return p.typ }

func (p *recordingPlugin) Execute(ctx context.Context, pspTransactionID string, req Request) (PluginResult, error) {
	if p.store != nil {
		if tx, err := p.store.Get(pspTransactionID); err == nil {
			p.observed = append(p.observed, tx)
		}
	}
	return p.result, p.err
}

func cardRequest() Request {
	return Request{
		WebShopClientID: "merchant-1",
		PaymentType:     "card",
		MerchantOrderID: "order-42",
		Amount:          decimal.NewFromInt(1000),
		Currency:        "RSD",
		CardData: &types.CardData{
			PAN:            "4111111111111111",
			SecurityCode:   "123",
			CardHolderName: "Petar Petrovic",
			ExpiryDate:     "12/29",
		},
	}
}

func TestInitiatePersistsPendingBeforePlugin(t *testing.T) {
	store := NewMemoryStore()
	plugin := &recordingPlugin{
		typ:   "card",
		store: store,
		result: PluginResult{
			ExternalTransactionID: "acq-1",
			Status:                types.StatusCompleted,
		},
	}
	svc := NewService(store, plugin)

	resp, err := svc.Initiate(context.Background(), cardRequest())
	require.NoError(t, err)

	require.Len(t, plugin.observed, 1, "the record must exist when the plugin runs")
	pending := plugin.observed[0]
	assert.Equal(t, types.StatusPending, pending.Status)
	assert.Empty(t, pending.ExternalTransactionID)
	assert.Equal(t, resp.PSPTransactionID, pending.PSPTransactionID)
}

func TestInitiatePersistsExternalCorrelation(t *testing.T) {
	store := NewMemoryStore()
	plugin := &recordingPlugin{typ: "card", result: PluginResult{
		ExternalTransactionID: "acq-1",
		Status:                types.StatusCompleted,
	}}
	svc := NewService(store, plugin)

	resp, err := svc.Initiate(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, resp.Status)

	tx, err := svc.GetTransaction(resp.PSPTransactionID)
	require.NoError(t, err)
	assert.Equal(t, "acq-1", tx.ExternalTransactionID)
	assert.Equal(t, types.StatusCompleted, tx.Status)
	assert.NotNil(t, tx.CompletedAt)
	assert.NotEqual(t, tx.PSPTransactionID, tx.ExternalTransactionID,
		"the PSP id and the bank-chain id are distinct namespaces")
}

func TestInitiatePluginFailureLeavesFailedRecord(t *testing.T) {
	store := NewMemoryStore()
	plugin := &recordingPlugin{typ: "card", err: errors.New("acquirer unreachable")}
	svc := NewService(store, plugin)

	resp, err := svc.Initiate(context.Background(), cardRequest())
	require.NoError(t, err, "plugin failures are structured results, not errors")
	assert.Equal(t, types.StatusFailed, resp.Status)

	tx, err := svc.GetTransaction(resp.PSPTransactionID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, tx.Status)
	assert.Empty(t, tx.ExternalTransactionID)
}

func TestInitiateUnknownPaymentType(t *testing.T) {
	svc := NewService(NewMemoryStore())

	req := cardRequest()
	req.PaymentType = "cheque"
	_, err := svc.Initiate(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownPaymentType)
}

func TestInitiateValidation(t *testing.T) {
	svc := NewService(NewMemoryStore(), &recordingPlugin{typ: "card"})

	req := cardRequest()
	req.Amount = decimal.Zero
	_, err := svc.Initiate(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)

	req = cardRequest()
	req.MerchantOrderID = ""
	_, err = svc.Initiate(context.Background(), req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInitiateProviderPluginRedirects(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, &ProviderPlugin{Name: PaymentTypePayPal, Gateway: provider.SimGateway{Name: "paypal"}})

	req := cardRequest()
	req.PaymentType = PaymentTypePayPal
	req.CardData = nil

	resp, err := svc.Initiate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusProcessing, resp.Status)
	assert.Contains(t, resp.RedirectURL, "approve")

	tx, err := svc.GetTransaction(resp.PSPTransactionID)
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ExternalTransactionID, "provider reference is persisted for correlation")
	assert.Nil(t, tx.CompletedAt, "awaiting approval is not terminal")
}

func TestInitiateQRPluginReturnsImage(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, &QRPlugin{
		Renderer:        qr.SimRenderer{},
		MerchantName:    "Webshop",
		MerchantAccount: "845-0000000001-12",
	})

	req := cardRequest()
	req.PaymentType = PaymentTypeQR
	req.CardData = nil

	resp, err := svc.Initiate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.StatusPending, resp.Status)
	assert.NotEmpty(t, resp.QRCode)
}
