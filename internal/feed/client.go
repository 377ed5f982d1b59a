package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/finvue/marketsync/internal/model"
)

// FeedError represents an HTTP-level error from a pull endpoint.
type FeedError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether a later cycle may succeed.
func (e *FeedError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client fetches pull-mode channels over REST.
type Client struct {
	baseURL    string
	paths      map[model.Channel]string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a feed client. paths maps each pull channel to its fixed
// REST path relative to baseURL.
func NewClient(baseURL string, paths map[model.Channel]string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		paths:   paths,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Fetch retrieves and normalizes one channel's records. Every error is
// transient from the scheduler's point of view: the next tick retries.
func (c *Client) Fetch(ctx context.Context, ch model.Channel) ([]model.Record, error) {
	path, ok := c.paths[ch]
	if !ok {
		return nil, fmt.Errorf("no feed path configured for channel %q", ch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &FeedError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	records, err := ParseRecords(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s payload: %w", ch, err)
	}

	c.logger.Debug("fetched channel",
		"channel", ch,
		"records", len(records),
	)

	return records, nil
}
