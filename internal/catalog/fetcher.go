package catalog

import (
	"context"
	"fmt"
	"net/http"

	"codeberg.org/snonux/translink/internal/breaker"
)

// Fetcher retrieves the catalog from the network
type Fetcher interface {
	Fetch(ctx context.Context) (Catalog, error)
}

// HTTPFetcher fetches the catalog with a GET on the languages endpoint
type HTTPFetcher struct {
	url    string
	client *breaker.Client
}

// NewHTTPFetcher creates a fetcher for url. A nil httpClient uses defaults.
func NewHTTPFetcher(url string, httpClient *http.Client) *HTTPFetcher {
	return &HTTPFetcher{
		url:    url,
		client: breaker.New("languages", httpClient),
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context) (Catalog, error) {
	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, err
	}

	c, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse languages response: %w", err)
	}
	return c, nil
}
