package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBytes caps how much of a response body Get will read.
const DefaultMaxBytes = 16 << 20

// Client wraps HTTP operations with a fixed User-Agent, timeout and body
// size limit.
//
// Example usage:
//
//	client := NewClient()
//	data, err := client.Get(ctx, "https://i.ytimg.com/vi/abc123/maxresdefault.webp")
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 30 second timeout
//   - "ydl-music" User-Agent header
//   - DefaultMaxBytes body limit
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "ydl-music",
		maxBytes:  DefaultMaxBytes,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - The body is larger than the client's limit
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, c.maxBytes)
	}
	return body, nil
}
