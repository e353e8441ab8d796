package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// Client is an HTTP-transported migrate.DestinationClient: it POSTs a
// JSON-encoded invocation to BaseURL and decodes a single JSON receipt
// from the response body.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client using http.DefaultClient unless client is
// provided.
func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, HTTP: client}
}

// Invoke implements migrate.DestinationClient.
func (c *Client) Invoke(ctx context.Context, inv migrate.Invocation) (migrate.Receipt, error) {
	body, err := json.Marshal(toWire(inv))
	if err != nil {
		return migrate.Receipt{}, fmt.Errorf("encode invocation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return migrate.Receipt{}, fmt.Errorf("build invocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return migrate.Receipt{}, fmt.Errorf("invoke %s: %w", inv.Can, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return migrate.Receipt{}, fmt.Errorf("invoke %s: destination returned status %d", inv.Can, resp.StatusCode)
	}

	var wire receiptWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return migrate.Receipt{}, fmt.Errorf("decode receipt for %s: %w", inv.Can, err)
	}

	return wire.toReceipt(), nil
}
