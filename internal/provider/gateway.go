package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the reference an external processor (PayPal, CoinPayments)
// hands back for a created payment.
type Payment struct {
	ProviderRef string
	ApprovalURL string
}

// Gateway creates a payment at an external processor. The PSP treats
// the processor as opaque: a reference to correlate on and a URL to
// send the payer to.
type Gateway interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Payment, error)
}

// HTTPGateway talks to a processor's REST API.
type HTTPGateway struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Payment, error) {
	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
		"metadata": metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Payment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/payments", bytes.NewBuffer(body))
	if err != nil {
		return Payment{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.HTTP.Do(req)
	if err != nil {
		return Payment{}, fmt.Errorf("provider request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Payment{}, fmt.Errorf("provider returned status %d", res.StatusCode)
	}

	var resp struct {
		ID          string `json:"id"`
		ApprovalURL string `json:"approvalUrl"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return Payment{}, fmt.Errorf("decode provider response: %w", err)
	}
	if resp.ID == "" {
		return Payment{}, fmt.Errorf("provider response missing payment id")
	}
	return Payment{ProviderRef: resp.ID, ApprovalURL: resp.ApprovalURL}, nil
}

// SimGateway stands in for a real processor in the simulated
// deployment, the way a dev broker stands in for a cloud credential
// service.
type SimGateway struct {
	Name string
}

func (g SimGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Payment, error) {
	ref := uuid.NewString()
	return Payment{
		ProviderRef: ref,
		ApprovalURL: fmt.Sprintf("https://pay.sim.local/%s/approve/%s", g.Name, ref),
	}, nil
}
