package translation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/snonux/translink/internal/breaker"
)

// LegacyClient talks to the plain request/response endpoint: one GET with
// the sentence and codes as query parameters, translated text as the body
type LegacyClient struct {
	endpoint string
	http     *breaker.Client
}

// NewLegacyClient creates a client for endpoint
func NewLegacyClient(endpoint string, httpClient *http.Client) *LegacyClient {
	return &LegacyClient{
		endpoint: endpoint,
		http:     breaker.New("legacy", httpClient),
	}
}

// Translate fetches the translation of sentence. Blank codes are left out
// and defaulted by the server.
func (c *LegacyClient) Translate(ctx context.Context, sentence, fromLang, toLang string) (string, error) {
	if strings.TrimSpace(sentence) == "" {
		return "", fmt.Errorf("sentence must not be empty")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid legacy endpoint %q: %w", c.endpoint, err)
	}

	q := u.Query()
	q.Set("sentence", sentence)
	if fromLang != "" {
		q.Set("from", fromLang)
	}
	if toLang != "" {
		q.Set("to", toLang)
	}
	u.RawQuery = q.Encode()

	body, err := c.http.Get(ctx, u.String())
	if err != nil {
		return "", fmt.Errorf("legacy translation failed: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// Name implements Translator
func (c *LegacyClient) Name() string {
	return "legacy"
}
