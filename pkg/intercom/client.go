// Package intercom is a small client for the Intercom Articles API: cursor
// paginated listing for ingestion plus the create and delete calls used by
// the admin commands.
package intercom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Intercom API.
	DefaultBaseURL = "https://api.intercom.io"

	// DefaultRateLimit is the sustained request rate (requests per second).
	DefaultRateLimit = 5.0

	// deleteVersion and createVersion pin the API versions the article admin
	// calls were written against.
	deleteVersion = "2.9"
	createVersion = "2.10"
)

// Config holds configuration for the Intercom client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Token is the bearer token used on every request.
	Token string

	// RateLimit throttles outgoing requests. Defaults to DefaultRateLimit;
	// a negative value disables throttling.
	RateLimit float64

	// HTTPClient overrides the default client (60s timeout).
	HTTPClient *http.Client
}

// Client talks to the Intercom REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new Intercom client.
func NewClient(c Config, logger *slog.Logger) (*Client, error) {
	if c.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	limit := rate.Limit(c.RateLimit)
	switch {
	case c.RateLimit == 0:
		limit = rate.Limit(DefaultRateLimit)
	case c.RateLimit < 0:
		limit = rate.Inf
	}

	return &Client{
		baseURL:    baseURL,
		token:      c.Token,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}, nil
}

// ArticlesURL is the first page of the article listing.
func (c *Client) ArticlesURL() string {
	return c.baseURL + "/articles"
}

// do sends an authenticated request and returns the response. The caller
// closes the body.
func (c *Client) do(ctx context.Context, method, url string, body any, headers map[string]string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	c.logger.Debug("intercom request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
	)

	return resp, nil
}

// statusError drains resp into a *StatusError.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
