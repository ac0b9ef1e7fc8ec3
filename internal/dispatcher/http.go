package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/comigor/jargone-go/internal/logger"
)

// HTTPClient posts queries to the local explanation service.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client for the endpoint at url. The underlying
// http.Client has no timeout; only the caller's context bounds a request.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{},
	}
}

// Explain POSTs q as JSON and returns the response body on a 2xx status.
func (c *HTTPClient) Explain(ctx context.Context, q Query) ([]byte, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.L.Debug("dispatching query", "url", c.url, "chars", len(q.Text))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		logger.L.Warn("explanation service rejected query", "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return out, nil
}
