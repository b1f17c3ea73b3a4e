// internal/service/analysis/factcheck.go

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// FactCheckClient queries an external claim-review HTTP service. Results are
// cached by claim text so repeated analyses of the same session do not re-query.
type FactCheckClient struct {
	baseURL string
	client  *http.Client
	mu      sync.RWMutex
	cache   map[string]string
}

// factCheckResponse is the oracle's response body.
type factCheckResponse struct {
	Result string `json:"result"`
}

// NewFactCheckClient creates a fact-check oracle client.
func NewFactCheckClient(baseURL string, timeout time.Duration) *FactCheckClient {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &FactCheckClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   make(map[string]string),
	}
}

// CheckClaim returns a human-readable review for the given text. Network
// failures and timeouts surface as errors; callers treat them as non-fatal.
func (c *FactCheckClient) CheckClaim(ctx context.Context, text string) (string, error) {
	c.mu.RLock()
	if cached, ok := c.cache[text]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	reqURL := fmt.Sprintf("%s?input=%s", c.baseURL, url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("building fact-check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying fact-check oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fact-check oracle returned status %d", resp.StatusCode)
	}

	var body factCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding fact-check response: %w", err)
	}

	c.mu.Lock()
	c.cache[text] = body.Result
	c.mu.Unlock()

	return body.Result, nil
}
