// Package cantonclient wraps the Canton JSON Ledger API
// (https://docs.daml.com/json-api/index.html). It covers party
// allocation, contract create/exercise/query/fetch and the event
// stream. The ledger is the sole source of truth: this client only
// submits well-formed requests and decodes responses.
package cantonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fixed ledger API routes.
const (
	routeAllocateParty = "/v1/parties/allocate"
	routeCreate        = "/v1/create"
	routeExercise      = "/v1/exercise"
	routeQuery         = "/v1/query"
	routeFetch         = "/v1/fetch"
	routeStreamQuery   = "/v1/stream/query"
)

const defaultTimeout = 30 * time.Second

// APIError is the single failure mode for any non-2xx ledger response.
// It carries the HTTP status and the raw response text; the client does
// not distinguish authorization failures from other 4xx/5xx.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canton api error: %d - %s", e.Status, e.Body)
}

// Config holds the immutable client configuration. The bearer token is
// fixed for the lifetime of the client; build a new client to act with
// different credentials.
type Config struct {
	BaseURL string
	Token   string
}

// Client issues requests against one Canton participant node.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option mutates the client during construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New builds a client from the given config.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("canton base url required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request posts a JSON body to one of the fixed ledger routes and
// decodes the 2xx response into out. A single attempt, no retry.
func (c *Client) request(ctx context.Context, route string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("canton request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(text)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
