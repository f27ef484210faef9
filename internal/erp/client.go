package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/config"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/dispatch"
	"github.com/NazahX/TOPCELL-WEIGHBRIDGE/internal/errs"
)

const requestTimeout = 15 * time.Second

// Client posts weighbridge tickets to the ERP's REST endpoint. Missing
// connection settings surface as a delivery error on send, not at startup.
type Client struct {
	baseURL  string
	apiKey   string
	db       string
	username string
	http     *http.Client
}

// NewClient creates an ERP client from configuration.
func NewClient(cfg *config.ErpConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		db:       cfg.DB,
		username: cfg.Username,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

type sendResponse struct {
	ExternalID any `json:"external_id"`
}

// SendTicket delivers one ticket payload. Implements dispatch.Sender.
func (c *Client) SendTicket(ctx context.Context, payload map[string]any) (*dispatch.SendResult, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, errs.Delivery("ERP connection is not configured", nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Delivery("failed to encode ticket payload", err)
	}

	endpoint := c.baseURL + "/api/weighbridge/tickets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Delivery("failed to build ERP request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-ODOO-DB", c.db)
	req.Header.Set("X-ODOO-USER", c.username)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Delivery("ERP request failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Delivery(
			fmt.Sprintf("ERP returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	result := &dispatch.SendResult{}
	var decoded sendResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.ExternalID != nil {
		result.ExternalID = fmt.Sprintf("%v", decoded.ExternalID)
	}
	return result, nil
}
