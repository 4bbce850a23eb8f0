package acquirer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

const pccProcessPath = "/api/pcc/process-payment"

// PCCClient forwards a payment to the Payment Card Center.
type PCCClient interface {
	ProcessPayment(ctx context.Context, req types.PCCPaymentRequest) (types.PCCPaymentResponse, error)
}

// HTTPPCCClient is the production client. Its timeout is the
// acquirer→PCC deadline; a resubmission after expiry is safe because
// the PCC replays by AcquirerOrderID.
type HTTPPCCClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPPCCClient(baseURL string, timeout time.Duration) *HTTPPCCClient {
	return &HTTPPCCClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPPCCClient) ProcessPayment(ctx context.Context, req types.PCCPaymentRequest) (types.PCCPaymentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.PCCPaymentResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+pccProcessPath, bytes.NewBuffer(body))
	if err != nil {
		return types.PCCPaymentResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return types.PCCPaymentResponse{}, fmt.Errorf("pcc request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return types.PCCPaymentResponse{}, fmt.Errorf("pcc returned status %d", res.StatusCode)
	}

	var resp types.PCCPaymentResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return types.PCCPaymentResponse{}, fmt.Errorf("decode pcc response: %w", err)
	}
	return resp, nil
}
