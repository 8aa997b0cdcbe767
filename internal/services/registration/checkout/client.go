// Package checkout creates payment orders against the processor's Orders API.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Config holds processor API credentials and endpoint configuration.
type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client calls the processor's Orders API.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// Order is the processor's order record, relayed to the caller as-is.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// NewClient creates a configured Orders API client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.KeyID) == "" {
		return nil, fmt.Errorf("checkout key id is required")
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, fmt.Errorf("checkout key secret is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("checkout base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateOrder creates one order for a participant serial number.
//
// The serial number travels in the order notes under form_serial_number.
// Webhook reconciliation depends on this: the processor copies order notes
// onto the payment entity it later reports.
func (c *Client) CreateOrder(ctx context.Context, serialNumber string, amount int64, currency string) (Order, error) {
	if c == nil {
		return Order{}, fmt.Errorf("checkout client is not configured")
	}
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return Order{}, fmt.Errorf("serial number is required")
	}
	if amount <= 0 {
		return Order{}, fmt.Errorf("amount must be greater than zero")
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return Order{}, fmt.Errorf("currency is required")
	}

	// Receipt references must be unique per order; the processor enforces a
	// 40 character cap, so only the first uuid segment is used.
	receipt := fmt.Sprintf("receipt_%s_%s", serialNumber, strings.SplitN(uuid.NewString(), "-", 2)[0])

	body, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    map[string]string{"form_serial_number": serialNumber},
	})
	if err != nil {
		return Order{}, fmt.Errorf("encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Order{}, fmt.Errorf("create order: processor returned %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return Order{}, fmt.Errorf("decode order response: %w", err)
	}
	if strings.TrimSpace(order.ID) == "" {
		return Order{}, fmt.Errorf("order response has no id")
	}
	return order, nil
}

func truncate(value []byte, max int) string {
	if len(value) <= max {
		return string(value)
	}
	return string(value[:max]) + "..."
}
