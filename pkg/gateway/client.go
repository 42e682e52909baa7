package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Client is the payment gateway's refund API. One call moves funds; the
// caller owns retries and reconciliation.
type Client interface {
	Refund(ctx context.Context, secretKey string, req *RefundRequest) (*RefundResponse, error)
}

// RefundRequest is the gateway's wire format. Amount is in minor units.
type RefundRequest struct {
	Transaction string `json:"transaction"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Notes       string `json:"notes,omitempty"`
}

type RefundResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    *RefundData `json:"data,omitempty"`
}

type RefundData struct {
	ID string `json:"id"`
}

type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

var _ Client = &HTTPClient{}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Refund posts a refund instruction to the gateway. A transport failure or a
// non-2xx status is returned as an error; a well-formed response with
// Status=false is returned to the caller as a gateway-reported failure, not
// an error, so the two outcomes stay distinguishable.
func (c *HTTPClient) Refund(ctx context.Context, secretKey string, req *RefundRequest) (*RefundResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode refund request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/refund", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+secretKey)

	httpResp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d: %s", httpResp.StatusCode, string(body))
	}

	var resp RefundResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &resp, nil
}

// MinorUnits converts a two-decimal monetary amount to the gateway's integer
// minor-unit representation. Exact for any two-decimal currency.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
