package pcc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

const issuerProcessPath = "/api/bank/issuer/process"

// HTTPIssuerClient posts issuer requests to whichever bank the router
// resolved. The client timeout is the PCC→issuer deadline; on expiry
// the caller finalizes the transaction Failed instead of leaving it
// Pending.
type HTTPIssuerClient struct {
	HTTP *http.Client
}

func NewHTTPIssuerClient(timeout time.Duration) *HTTPIssuerClient {
	return &HTTPIssuerClient{HTTP: &http.Client{Timeout: timeout}}
}

func (c *HTTPIssuerClient) Process(ctx context.Context, issuerURL string, req types.IssuerBankRequest) (types.IssuerBankResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return types.IssuerBankResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, issuerURL+issuerProcessPath, bytes.NewBuffer(body))
	if err != nil {
		return types.IssuerBankResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return types.IssuerBankResponse{}, fmt.Errorf("issuer request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return types.IssuerBankResponse{}, fmt.Errorf("issuer returned status %d", res.StatusCode)
	}

	var resp types.IssuerBankResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return types.IssuerBankResponse{}, fmt.Errorf("decode issuer response: %w", err)
	}
	return resp, nil
}
