package psp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyonpay/cardswitch/internal/acquirer"
	"github.com/halcyonpay/cardswitch/pkg/types"
)

const PaymentTypeCard = "card"

// AcquirerClient submits a card payment to the acquirer bank.
type AcquirerClient interface {
	ProcessPayment(ctx context.Context, paymentID, merchantID string, amount decimal.Decimal, currency string, cardData types.CardData) (acquirer.Result, error)
}

// HTTPAcquirerClient posts to the acquirer's payment endpoint.
type HTTPAcquirerClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPAcquirerClient(baseURL string, timeout time.Duration) *HTTPAcquirerClient {
	return &HTTPAcquirerClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPAcquirerClient) ProcessPayment(ctx context.Context, paymentID, merchantID string, amount decimal.Decimal, currency string, cardData types.CardData) (acquirer.Result, error) {
	payload := map[string]any{
		"paymentId":  paymentID,
		"merchantId": merchantID,
		"amount":     amount,
		"currency":   currency,
		"cardData":   cardData,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return acquirer.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/bank/payment/process", bytes.NewBuffer(body))
	if err != nil {
		return acquirer.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return acquirer.Result{}, fmt.Errorf("acquirer request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return acquirer.Result{}, fmt.Errorf("acquirer returned status %d", res.StatusCode)
	}

	var result acquirer.Result
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return acquirer.Result{}, fmt.Errorf("decode acquirer response: %w", err)
	}
	return result, nil
}

// CardPlugin runs a card payment through the acquirer bank chain. The
// acquirer order id becomes the PSP transaction's external id.
type CardPlugin struct {
	Acquirer AcquirerClient
}

func (p *CardPlugin) Type() string { return PaymentTypeCard }

func (p *CardPlugin) Execute(ctx context.Context, pspTransactionID string, req Request) (PluginResult, error) {
	if req.CardData == nil {
		return PluginResult{}, errors.New("card payment requires card data")
	}

	result, err := p.Acquirer.ProcessPayment(ctx, pspTransactionID, req.WebShopClientID, req.Amount, req.Currency, *req.CardData)
	if err != nil {
		return PluginResult{}, err
	}

	message := result.StatusMessage
	if message == "" {
		message = result.ErrorMessage
	}
	return PluginResult{
		ExternalTransactionID: result.AcquirerOrderID,
		Status:                result.Status,
		StatusMessage:         message,
	}, nil
}
