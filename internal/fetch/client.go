// Package fetch performs the HTTP requests used by the metadata client and
// the downloaders.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxPresize caps the buffer allocated up front from a size estimate.
const maxPresize = 1 << 30

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient sends requests with http.DefaultClient.
type DefaultHTTPClient struct{}

func (DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// Client issues GET requests with a fixed user agent.
type Client struct {
	HTTP      HTTPClient
	UserAgent string
	// Timeout bounds Bytes requests. Streams and opened bodies are bounded
	// only by the caller's context.
	Timeout time.Duration
}

// New returns a Client. An empty userAgent is replaced with a random one.
func New(httpClient HTTPClient, userAgent string) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient{}
	}
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}
	return &Client{HTTP: httpClient, UserAgent: userAgent}
}

// RandomUserAgent returns an 8-character identifier. The release API
// requires a user agent but does not care which.
func RandomUserAgent() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Open sends a GET request and returns the response body of a 2xx reply.
// The caller must close it.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, url, "get")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Bytes fetches url and returns the whole body.
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	resp, err := c.do(ctx, url, "get")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Operation: "get", Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return data, nil
}

// Stream downloads url into memory. The buffer is pre-sized from sizeHint
// and onProgress, when set, is called with the running byte count after
// every chunk.
func (c *Client) Stream(ctx context.Context, url string, sizeHint int64, onProgress func(received int64)) ([]byte, error) {
	resp, err := c.do(ctx, url, "download")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if sizeHint < 0 {
		sizeHint = 0
	}
	buf := bytes.NewBuffer(make([]byte, 0, min(sizeHint, maxPresize)))
	chunk := make([]byte, 64*1024)
	var received int64
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			if onProgress != nil {
				onProgress(received)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, &FetchError{
				URL:       url,
				Operation: "download",
				Status:    resp.StatusCode,
				Err:       fmt.Errorf("reading body after %d bytes: %w", received, readErr),
				Hint:      "the connection was interrupted",
			}
		}
	}
	return buf.Bytes(), nil
}

func (c *Client) do(ctx context.Context, url, op string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Operation: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = DefaultHTTPClient{}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Operation: op, Err: err, Hint: "check network connectivity"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &FetchError{
			URL:       url,
			Operation: op,
			Status:    resp.StatusCode,
			Err:       fmt.Errorf("HTTP %d", resp.StatusCode),
			Hint:      statusHint(resp.StatusCode),
		}
	}
	return resp, nil
}

func statusHint(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "the release or file does not exist"
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return "the API rate limit may be exhausted; try again later"
	case status >= 500:
		return "the server is having trouble; try again later"
	}
	return ""
}
