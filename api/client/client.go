// Package apiclient talks to a running ragbot API server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/api"
	apisearch "github.com/jskoiz/llama3-chatbot-with-rag/api/search"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.Code)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Message)
}

// Client is a thin JSON client for the ragbot API.
type Client struct {
	target     string
	httpClient *http.Client
}

// New returns a client for the server at target (e.g. "http://localhost:5001").
// Rebuilds can take minutes, so the default timeout is generous.
func New(target string) *Client {
	return &Client{
		target:     strings.TrimRight(target, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Minute},
	}
}

// Ask posts question to /intercom.
func (c *Client) Ask(ctx context.Context, question string) (*api.QueryResponse, error) {
	var out api.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/intercom", api.QueryRequest{Body: question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rebuild triggers a rebuild and returns the acknowledgement message.
func (c *Client) Rebuild(ctx context.Context) (string, error) {
	var out api.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/rebuild_vectorstore", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Stats fetches the server counters.
func (c *Client) Stats(ctx context.Context) (*stats.Snapshot, error) {
	var out stats.Snapshot
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a similarity search against the active index.
func (c *Client) Search(ctx context.Context, query string, topK int) (*apisearch.SearchOutput, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))

	var out apisearch.SearchOutput
	if err := c.do(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.target+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling ragbot API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
