// Package httpclient provides the HTTP client the crawler and enricher use
// to fetch feed pages and articles.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientType selects the request-header profile.
type ClientType string

const (
	// BrowserClient uses browser-like headers for sites that reject
	// non-browser User-Agents with 406 responses.
	BrowserClient ClientType = "browser"

	// SimpleClient uses curl-like headers; Cloudflare-protected sites let
	// simple tools through but block browser impersonation.
	SimpleClient ClientType = "simple"
)

const defaultTimeout = 30 * time.Second

// Client wraps an http.Client with a header profile and timeout.
type Client struct {
	client     *http.Client
	clientType ClientType
}

// New creates a client with the given header profile.
func New(clientType ClientType) *Client {
	return &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		clientType: clientType,
	}
}

// Get fetches url and returns the response body. Non-200 responses are
// errors; the caller owns cancellation via ctx.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	case SimpleClient:
		req.Header.Set("User-Agent", "curl/8.7.1")
	}
}
