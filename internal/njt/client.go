package njt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mattdonders/njtstatus/internal/feed"
)

// StatusFetcher fetches the line status payload.
// This interface is implemented by *Client and can be used for testing.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, endpoint string) (feed.Payload, error)
}

// Ensure Client implements StatusFetcher at compile time.
var _ StatusFetcher = (*Client)(nil)

const (
	defaultUserAgent = "njtstatus/1.0"
	defaultTimeout   = 10 * time.Second
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationError means the server answered but the response is unusable.
type ApplicationError struct {
	StatusCode int
	Err        error
}

func (e *ApplicationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("status endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("status endpoint (status %d): %v", e.StatusCode, e.Err)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

// Client talks to the status endpoint over HTTP.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient builds a Client. A non-positive timeout uses the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// FetchStatus retrieves and unpacks the status payload from endpoint.
func (c *Client) FetchStatus(ctx context.Context, endpoint string) (feed.Payload, error) {
	if c == nil {
		return feed.Payload{}, &TransportError{Err: errors.New("client is nil")}
	}
	u, err := ParseEndpoint(endpoint)
	if err != nil {
		return feed.Payload{}, &TransportError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return feed.Payload{}, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return feed.Payload{}, &TransportError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return feed.Payload{}, &ApplicationError{StatusCode: resp.StatusCode}
	}

	var values map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		return feed.Payload{}, &ApplicationError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	payload, err := feed.PayloadFromMap(values)
	if err != nil {
		return feed.Payload{}, &ApplicationError{StatusCode: resp.StatusCode, Err: err}
	}
	return payload, nil
}

// ParseEndpoint validates an http(s) endpoint URL.
func ParseEndpoint(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, errors.New("endpoint is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q: host missing", endpoint)
	}
	u.Fragment = ""
	return u, nil
}
