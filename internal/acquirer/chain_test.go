package acquirer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonpay/cardswitch/internal/issuer"
	"github.com/halcyonpay/cardswitch/internal/ledger"
	"github.com/halcyonpay/cardswitch/internal/pcc"
	"github.com/halcyonpay/cardswitch/internal/routing"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

// Full acquirer → PCC → issuer chain over real HTTP boundaries.
func TestCardPaymentChainEndToEnd(t *testing.T) {
	issuerSvc := issuer.NewService(
		issuer.NewMemoryVault([]issuer.StoredCard{{
			PAN:            "4111111111111111",
			SecurityCode:   "123",
			CardHolderName: "Petar Petrovic",
			ExpiryDate:     "12/29",
			AccountID:      "acc-1",
		}}),
		issuer.NewBalanceAuthorizer([]issuer.Account{{ID: "acc-1", Balance: decimal.NewFromInt(100000)}}),
	)
	issuerSrv := httptest.NewServer(issuer.NewRouter(&issuer.Handler{Service: issuerSvc}))
	defer issuerSrv.Close()

	router, err := routing.New(routing.ModeReject, []routing.Bank{
		{BIN: "4111", Name: "issuer-bank", URL: issuerSrv.URL},
	})
	require.NoError(t, err)

	pccSvc := pcc.NewService(ledger.NewMemoryStore(), router, pcc.NewHTTPIssuerClient(5*time.Second))
	pccSrv := httptest.NewServer(pcc.NewRouter(&pcc.Handler{Service: pccSvc}))
	defer pccSrv.Close()

	acquirerSvc := NewService(NewHTTPPCCClient(pccSrv.URL, 10*time.Second))

	result := acquirerSvc.SubmitCardPayment(context.Background(), "pay-1", "merchant-1",
		decimal.NewFromInt(1000), "RSD", types.CardData{
			PAN:            "4111111111111111",
			SecurityCode:   "123",
			CardHolderName: "Petar Petrovic",
			ExpiryDate:     "12/29",
		})

	require.True(t, result.Success)
	assert.Equal(t, types.StatusCompleted, result.Status)
	require.NotEmpty(t, result.IssuerOrderID)
	require.NotEmpty(t, result.AcquirerOrderID)

	// The PCC status endpoint agrees with the response the chain returned.
	res, err := http.Get(pccSrv.URL + "/api/pcc/transaction/" + result.AcquirerOrderID + "/status")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var view struct {
		AcquirerOrderID string                  `json:"acquirerOrderId"`
		IssuerOrderID   string                  `json:"issuerOrderId"`
		Status          types.TransactionStatus `json:"status"`
		MaskedPAN       string                  `json:"maskedPan"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&view))
	assert.Equal(t, result.AcquirerOrderID, view.AcquirerOrderID)
	assert.Equal(t, result.IssuerOrderID, view.IssuerOrderID)
	assert.Equal(t, types.StatusCompleted, view.Status)
	assert.Equal(t, "411111******1111", view.MaskedPAN)

	// Issuer-side order exists and correlates back to the acquirer order.
	order, ok := issuerSvc.Orders.Get(result.IssuerOrderID)
	require.True(t, ok)
	assert.Equal(t, result.AcquirerOrderID, order.AcquirerOrderID)
}

// A dead issuer bank fails the chain with a transport-failure message,
// not a business decline, and the ledger row still resolves.
func TestCardPaymentChainIssuerDown(t *testing.T) {
	deadIssuer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadIssuer.Close() // connection refused from here on

	router, err := routing.New(routing.ModeReject, []routing.Bank{
		{BIN: "4111", Name: "issuer-bank", URL: deadIssuer.URL},
	})
	require.NoError(t, err)

	store := ledger.NewMemoryStore()
	pccSvc := pcc.NewService(store, router, pcc.NewHTTPIssuerClient(time.Second))
	pccSrv := httptest.NewServer(pcc.NewRouter(&pcc.Handler{Service: pccSvc}))
	defer pccSrv.Close()

	acquirerSvc := NewService(NewHTTPPCCClient(pccSrv.URL, 5*time.Second))
	result := acquirerSvc.SubmitCardPayment(context.Background(), "pay-1", "merchant-1",
		decimal.NewFromInt(1000), "RSD", types.CardData{
			PAN:            "4111111111111111",
			SecurityCode:   "123",
			CardHolderName: "Petar Petrovic",
			ExpiryDate:     "12/29",
		})

	assert.False(t, result.Success)
	assert.Equal(t, types.StatusFailed, result.Status)
	assert.Equal(t, pcc.MsgIssuerUnavailable, result.ErrorMessage)

	tx, err := store.Get(context.Background(), result.AcquirerOrderID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, tx.Status)
	assert.Equal(t, pcc.MsgIssuerUnavailable, tx.StatusMessage)
}
