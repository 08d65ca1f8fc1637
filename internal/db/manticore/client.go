// Package manticore provides the SQL-over-HTTP client for the search
// engine and the deterministic SQL compiler for gateway queries.
package manticore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trawlhq/trawl/internal/domain"
)

const defaultTimeout = 65 * time.Second

// Config holds connection parameters for the search engine.
type Config struct {
	// BaseURL is the engine root, e.g. http://127.0.0.1:9308.
	BaseURL string
	// Timeout bounds one query round trip. Should exceed the engine-side
	// max_query_time so the engine aborts before the transport does.
	Timeout time.Duration
}

// Client executes SQL text against the engine's /sql endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an engine client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SearchSQL posts one SQL statement and returns the raw JSON payload.
// Transport failures and non-2xx statuses surface as
// domain.ErrBackendUnavailable; retrying is the caller's decision.
func (c *Client) SearchSQL(ctx context.Context, sql string) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/sql", strings.NewReader(sql),
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s",
			domain.ErrBackendUnavailable, resp.StatusCode, truncate(payload, 512))
	}
	return payload, nil
}

// Ping runs a trivial statement to check engine availability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.SearchSQL(ctx, "SELECT 1;")
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
