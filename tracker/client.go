// Package tracker pushes roster snapshots to the clan's tracker web service.
// Delivery is best-effort: a failed push is logged by the caller and never
// blocks reconciliation.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clan-bot/models"
)

// Client is an HTTP client for the tracker API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a tracker client. baseURL is the tracker root, e.g.
// https://tracker.example.org.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type rosterPayload struct {
	UpdatedAt string               `json:"updated_at"`
	Members   []models.RosterEntry `json:"members"`
}

// PushRoster uploads the matched-member snapshot produced by a sync pass.
func (c *Client) PushRoster(ctx context.Context, entries []models.RosterEntry) error {
	payload := rosterPayload{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Members:   entries,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/roster", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build roster request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("roster push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("roster push rejected: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
