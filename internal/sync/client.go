// Package sync pushes local records to the remote spreadsheet-backed
// store. The remote side is advisory, never authoritative: every failure
// here is logged and retried no sooner than the next scheduled tick.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adeshpande/finbook/internal/models"
)

// RemoteTransaction is the wire shape of one record row.
type RemoteTransaction struct {
	LocalID    int64     `json:"localId"`
	Kind       string    `json:"kind"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Category   string    `json:"category"`
	Desc       string    `json:"description"`
	OccurredAt time.Time `json:"occurredAt"`
}

type sheetSyncRequest struct {
	BatchID string              `json:"batchId"`
	Rows    []RemoteTransaction `json:"rows"`
}

type listResponse struct {
	Transactions []RemoteTransaction `json:"transactions"`
}

// Client talks to the remote sync REST endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a sync client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateTransaction pushes one record to POST /transactions.
func (c *Client) CreateTransaction(ctx context.Context, row RemoteTransaction) error {
	return c.post(ctx, "/transactions", row)
}

// ListTransactions fetches the remote rows from GET /transactions.
func (c *Client) ListTransactions(ctx context.Context) ([]RemoteTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote transactions: %w", models.ErrSync)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote returned status %d: %w", resp.StatusCode, models.ErrSync)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", models.ErrSync)
	}
	return payload.Transactions, nil
}

// PushSheet pushes a batch of rows to POST /google-sheets/sync.
func (c *Client) PushSheet(ctx context.Context, batchID string, rows []RemoteTransaction) error {
	return c.post(ctx, "/google-sheets/sync", sheetSyncRequest{BatchID: batchID, Rows: rows})
}

// ImportSheet pulls rows back from POST /google-sheets/import.
func (c *Client) ImportSheet(ctx context.Context) ([]RemoteTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/google-sheets/import", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create import request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to import sheet: %w", models.ErrSync)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote returned status %d: %w", resp.StatusCode, models.ErrSync)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode import response: %w", models.ErrSync)
	}
	return payload.Transactions, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request to %s failed: %w", path, models.ErrSync)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote returned status %d for %s: %w", resp.StatusCode, path, models.ErrSync)
	}
	return nil
}
