// Package openlibrary provides a client for the Open Library search
// API, used for catalog lookups when adding books.
package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client provides access to the Open Library search API.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Tests point this at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new Open Library client. Open Library asks
// clients to stay well under 100 requests per 5 minutes, so outbound
// calls are limited to one every 2 seconds with a small burst.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		logger:      logger,
		baseURL:     "https://openlibrary.org",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
