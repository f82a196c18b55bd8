// Package breaker wraps outbound HTTP calls in a circuit breaker so a dead
// endpoint fails fast instead of stalling every request on its timeout.
package breaker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxBody caps how much of a response body is read
const maxBody = 4 << 20

// StatusError reports a non-2xx HTTP response
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client performs GET requests through a circuit breaker
type Client struct {
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

// Settings returns the breaker settings shared by all outbound calls: the
// breaker opens after 3 consecutive failures and lets a probe through again
// after 30 seconds.
func Settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// New creates a client guarded by a breaker named name
func New(name string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		http: httpClient,
		cb:   gobreaker.NewCircuitBreaker(Settings(name)),
	}
}

// Get fetches url and returns the response body
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.cb.Execute(func() (interface{}, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

// State reports the breaker state ("closed", "half-open", "open")
func (c *Client) State() string {
	return c.cb.State().String()
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet}
	}

	return body, nil
}
