// Package api provides the HTTP client for the pulsechat collaborator endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/pulsechat/internal/errors"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4096

// Doer sends a single HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the chat, log and relay endpoints of a pulsechat server.
type Client struct {
	httpClient Doer
	baseURL    string
	timeout    time.Duration
	logger     *slog.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the server base URL, e.g. http://localhost:3000
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout bounds each request. Zero leaves timing to the transport.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the TLS client, mainly for tests
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client. Unless WithHTTPClient is given, requests go
// through a tls-client with a Chrome profile.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = client.logger.With("component", "api")

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(300),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the configured server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close marks the client closed. Later calls fail with ErrClosed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// postJSON sends payload to endpoint and returns the body of a 2xx response.
func (c *Client) postJSON(ctx context.Context, endpoint, operation string, payload any) ([]byte, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", operation, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("%s timed out after %s", operation, time.Since(start).Round(time.Millisecond)))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, operation+" failed", string(errorBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apierrors.NewTimeoutError(operation + " timed out reading response")
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}

	c.logger.Debug("request completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
