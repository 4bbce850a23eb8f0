package psp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonpay/cardswitch/internal/auth"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

func testPSPServer(t *testing.T) (*httptest.Server, *Service) {
	t.Helper()
	svc := NewService(NewMemoryStore(), &recordingPlugin{typ: "card", result: PluginResult{
		ExternalTransactionID: "acq-1",
		Status:                types.StatusCompleted,
	}})
	h := &Handler{
		Auth: auth.NewKeyAuthenticator(map[string]auth.Merchant{
			"test-key": {ID: "merchant-1", Name: "Webshop"},
		}),
		Service: svc,
	}
	return httptest.NewServer(NewRouter(h)), svc
}

func postPayment(t *testing.T, url, apiKey string, req Request) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq, err := http.NewRequest(http.MethodPost, url+"/api/psp/payments", bytes.NewReader(body))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := http.DefaultClient.Do(httpReq)
	require.NoError(t, err)
	return res
}

func TestPaymentsEndpoint(t *testing.T) {
	srv, _ := testPSPServer(t)
	defer srv.Close()

	res := postPayment(t, srv.URL, "test-key", cardRequest())
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var resp InitiateResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&resp))
	assert.NotEmpty(t, resp.PSPTransactionID)
	assert.Equal(t, types.StatusCompleted, resp.Status)
}

func TestPaymentsEndpointRequiresAuth(t *testing.T) {
	srv, _ := testPSPServer(t)
	defer srv.Close()

	res := postPayment(t, srv.URL, "", cardRequest())
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res = postPayment(t, srv.URL, "wrong-key", cardRequest())
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestPaymentsEndpointUnknownType(t *testing.T) {
	srv, _ := testPSPServer(t)
	defer srv.Close()

	req := cardRequest()
	req.PaymentType = "cheque"
	res := postPayment(t, srv.URL, "test-key", req)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestTransactionEndpointScopedToMerchant(t *testing.T) {
	srv, svc := testPSPServer(t)
	defer srv.Close()

	res := postPayment(t, srv.URL, "test-key", cardRequest())
	var created InitiateResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	res.Body.Close()

	// The owning merchant sees the transaction.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/psp/transaction/"+created.PSPTransactionID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-key")
	got, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)

	var view pspTransactionView
	require.NoError(t, json.NewDecoder(got.Body).Decode(&view))
	assert.Equal(t, "acq-1", view.ExternalTransactionID)

	// Another merchant's transaction reads as absent.
	tx, err := svc.GetTransaction(created.PSPTransactionID)
	require.NoError(t, err)
	tx.WebShopClientID = "someone-else"
	require.NoError(t, svc.Store.Update(tx))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/psp/transaction/"+created.PSPTransactionID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-key")
	got, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusNotFound, got.StatusCode)
}
