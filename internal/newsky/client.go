// Package newsky is a client for the Newsky airline API.
package newsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

const (
	defaultBaseURL = "https://newsky.app/api/airline-api"

	defaultTimeout = 10 * time.Second
)

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// Client talks to the Newsky airline API with bearer authentication.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Newsky client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listResponse mirrors the envelope of the flight list endpoints.
type listResponse struct {
	Results []domain.FlightSnapshot `json:"results"`
}

// detailResponse mirrors the envelope of the single-flight endpoint.
type detailResponse struct {
	Flight *domain.FlightSnapshot `json:"flight"`
}

// ListActive returns the currently in-progress flights.
func (c *Client) ListActive(ctx context.Context) ([]domain.FlightSnapshot, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, "/flights/ongoing", nil, &out); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}
	return out.Results, nil
}

// ListRecentlyClosed returns the most recent count flights regardless of
// state, each carrying its closed/deleted markers.
func (c *Client) ListRecentlyClosed(ctx context.Context, count int) ([]domain.FlightSnapshot, error) {
	body := map[string]int{"count": count}
	var out listResponse
	if err := c.do(ctx, http.MethodPost, "/flights/recent", body, &out); err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	return out.Results, nil
}

// GetDetail returns the full record for one flight. A 404 yields (nil, nil);
// the flight is simply not available yet and stays eligible for retry.
func (c *Client) GetDetail(ctx context.Context, flightID string) (*domain.FlightSnapshot, error) {
	var out detailResponse
	err := c.do(ctx, http.MethodGet, "/flight/"+flightID, nil, &out)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("flight detail %s: %w", flightID, err)
	}
	return out.Flight, nil
}

// statusError reports a non-2xx response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
