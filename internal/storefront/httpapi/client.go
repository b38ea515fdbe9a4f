// Package httpapi implements the storefront gateway interfaces against
// the ModelMart REST API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/modelmart/backend/internal/storefront"
)

// maxResponseSize is the maximum allowed API response size (4MB)
const maxResponseSize = 4 * 1024 * 1024

const defaultTimeout = 15 * time.Second

// Client is the shared HTTP plumbing for the gateway implementations.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the API at baseURL (scheme + host,
// without the /api/v1 prefix).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the standard API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *errorInfo      `json:"error,omitempty"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doJSON executes a request and decodes the success payload into out
// (which may be nil). Failures are mapped onto the storefront error
// taxonomy: transport problems and 5xx become ErrLedgerUnavailable for
// ledger paths via mapLedgerError; auth endpoints map their own codes.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) (int, *errorInfo, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
			}
			// Non-JSON error body (proxy, gateway); status is enough.
			return resp.StatusCode, nil, nil
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.Success {
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return resp.StatusCode, nil, fmt.Errorf("decode payload: %w", err)
			}
		}
		return resp.StatusCode, nil, nil
	}

	return resp.StatusCode, env.Error, nil
}

// mapLedgerError converts an HTTP failure on a ledger path into the
// storefront error taxonomy.
func mapLedgerError(status int, info *errorInfo, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", storefront.ErrLedgerUnavailable, err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return storefront.ErrLedgerUnauthorized
	case status == http.StatusConflict:
		return storefront.ErrLedgerConflict
	case status >= 500:
		return fmt.Errorf("%w: server returned %d", storefront.ErrLedgerUnavailable, status)
	}
	if info != nil {
		return fmt.Errorf("ledger rejected request: %s: %s", info.Code, info.Message)
	}
	return fmt.Errorf("ledger rejected request: status %d", status)
}
