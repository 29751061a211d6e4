// Package esign talks to the e-signature provider that issues rental
// contract envelopes. Its OAuth token lives in the provider_credentials
// table rather than process memory, so restarts and multiple instances share
// one token and refresh it lazily.
package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentzy-backend/internal/domain"
	"rentzy-backend/internal/repository"
)

const providerName = "esign"

// Client is the HTTP client for the e-signature provider.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	creds        repository.CredentialRepository

	// refreshMu single-flights token refreshes within this process; the
	// persisted row keeps concurrent processes from stampeding much further.
	refreshMu sync.Mutex
}

func NewClient(baseURL, clientID, clientSecret string, timeout time.Duration, creds repository.CredentialRepository) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		creds:        creds,
	}
}

// CreateEnvelope opens one signature envelope for a booking and returns the
// provider's envelope id. Callers guard against duplicates with the contract
// record existence check, not here.
func (c *Client) CreateEnvelope(ctx context.Context, bookingID int64) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{
		"externalId": fmt.Sprintf("booking-%d", bookingID),
		"requestId":  uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/envelopes", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: e-signature provider unreachable: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: e-signature provider returned %d: %s", domain.ErrExternalService, resp.StatusCode, raw)
	}

	var out struct {
		EnvelopeID string `json:"envelopeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding envelope response: %v", domain.ErrExternalService, err)
	}
	return out.EnvelopeID, nil
}

// accessToken returns a valid token, refreshing through the credential store
// when the persisted one is missing or stale.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	now := time.Now()
	if cred, err := c.creds.Get(ctx, providerName); err == nil && cred.Valid(now) {
		return cred.AccessToken, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	if cred, err := c.creds.Get(ctx, providerName); err == nil && cred.Valid(time.Now()) {
		return cred.AccessToken, nil
	}

	token, expiresIn, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	cred := &domain.ProviderCredential{
		Provider:    providerName,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	if err := c.creds.Upsert(ctx, cred); err != nil {
		return "", fmt.Errorf("persisting e-signature credential: %w", err)
	}
	return token, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, int64, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
		"grantType":    "client_credentials",
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: e-signature token endpoint unreachable: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("%w: e-signature token endpoint returned %d: %s", domain.ErrExternalService, resp.StatusCode, raw)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("%w: decoding token response: %v", domain.ErrExternalService, err)
	}
	if out.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: e-signature token endpoint returned an empty token", domain.ErrExternalService)
	}
	return out.AccessToken, out.ExpiresIn, nil
}
