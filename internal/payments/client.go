// Package payments talks to the external payment provider: creating checkout
// sessions and verifying the signatures on its webhook pushes.
package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rentzy-backend/internal/domain"
)

// WebhookCodeSuccess is the provider's code for a successful payment.
const WebhookCodeSuccess = "00"

// WebhookPayload is the push the provider delivers after a checkout session
// settles. Delivery is at-least-once and the origin is unauthenticated, so
// nothing in here is trusted until re-derived from stored state.
type WebhookPayload struct {
	Code      string      `json:"code"`
	Desc      string      `json:"desc"`
	Data      WebhookData `json:"data"`
	Signature string      `json:"signature"`
}

type WebhookData struct {
	OrderCode int64 `json:"orderCode"`
	Amount    int64 `json:"amount"`
}

// CheckoutRequest describes one payment link to create.
type CheckoutRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
}

// CheckoutLink is the provider's checkout session for a request.
type CheckoutLink struct {
	OrderCode   int64  `json:"orderCode"`
	CheckoutURL string `json:"checkoutUrl"`
}

// Client is the HTTP client for the payment provider.
type Client struct {
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	returnURL   string
	cancelURL   string
	httpClient  *http.Client
}

func NewClient(baseURL, clientID, apiKey, checksumKey, returnURL, cancelURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		returnURL:   returnURL,
		cancelURL:   cancelURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// CreateCheckoutLink asks the provider for a checkout session. A failure here
// is fatal to the request that needed the link but never touches booking state.
func (c *Client) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	body := map[string]any{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"returnUrl":   c.returnURL,
		"cancelUrl":   c.cancelURL,
		"signature":   c.sign(req.OrderCode, req.Amount),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/payment-requests", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", c.clientID)
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("x-request-id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: payment provider unreachable: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: payment provider returned %d: %s", domain.ErrExternalService, resp.StatusCode, raw)
	}

	var out struct {
		Code string       `json:"code"`
		Desc string       `json:"desc"`
		Data CheckoutLink `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding provider response: %v", domain.ErrExternalService, err)
	}
	if out.Code != WebhookCodeSuccess {
		return nil, fmt.Errorf("%w: payment provider rejected link: %s %s", domain.ErrExternalService, out.Code, out.Desc)
	}
	return &out.Data, nil
}

// VerifyWebhookSignature checks the HMAC on a webhook payload. With no
// checksum key configured verification is skipped; the idempotency and
// state-machine guards remain the real defense either way.
func (c *Client) VerifyWebhookSignature(p *WebhookPayload) bool {
	if c.checksumKey == "" {
		return true
	}
	return hmac.Equal([]byte(c.sign(p.Data.OrderCode, p.Data.Amount)), []byte(p.Signature))
}

func (c *Client) sign(orderCode, amount int64) string {
	mac := hmac.New(sha256.New, []byte(c.checksumKey))
	fmt.Fprintf(mac, "amount=%d&orderCode=%d", amount, orderCode)
	return hex.EncodeToString(mac.Sum(nil))
}
