// Package payment holds the gateway-mediated checkout path: open a
// charge intent for the cart's amount, verify the gateway's signed
// confirmation, then create the order with payment already settled.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway is the minimal contract with the external payment provider.
// It is injected so tests and offline environments can swap in a stub.
type Gateway interface {
	// CreateIntent opens a charge for amountCents and returns the
	// provider's intent id.
	CreateIntent(ctx context.Context, amountCents int, currency string) (string, error)
	// KeyID is the public key identifier the browser widget needs.
	KeyID() string
}

// HTTPGateway talks to a provider over plain JSON HTTP.
type HTTPGateway struct {
	URL    string
	Key    string
	Secret string
	Client *http.Client
}

type intentRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type intentResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amountCents int, currency string) (string, error) {
	body, err := json.Marshal(intentRequest{Amount: amountCents, Currency: currency, KeyID: g.Key})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.Key, g.Secret)

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway error (%d): %s", resp.StatusCode, raw)
	}

	var out intentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse gateway response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gateway: %s", out.Error.Message)
	}
	if out.ID == "" {
		return "", fmt.Errorf("gateway returned empty intent id")
	}
	return out.ID, nil
}

func (g *HTTPGateway) KeyID() string { return g.Key }
