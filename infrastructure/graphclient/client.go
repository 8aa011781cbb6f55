package graphclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"spingest/logging"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const (
	maxRetries  = 3
	baseBackoff = 2 * time.Second
	userAgent   = "spingest/0.1"
)

// TokenSource provides OAuth2 bearer tokens. Defined on the consumer side;
// spauth provides the client-credentials implementation.
type TokenSource interface {
	Token() (string, error)
}

// Client is a minimal HTTP client for the Microsoft Graph API: request
// construction, bearer auth, throttling-aware retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *logging.Logger

	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Graph API client. A nil httpClient falls back to
// http.DefaultClient; an empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      token,
		logger:     logging.Default().WithComponent("graph_client"),
		sleepFunc:  sleepCtx,
	}
}

// get executes a GET against the Graph API and returns the response body.
// path is appended to the base URL; throttled (429) and transient 5xx
// responses are retried with the server-suggested delay.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	var attempt int
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("graph: create request: %w", err)
		}

		tok, err := c.token.Token()
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph: GET %s: %w", path, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			if readErr != nil {
				return nil, fmt.Errorf("graph: read response: %w", readErr)
			}
			return body, nil
		}

		if isRetryable(resp.StatusCode) && attempt < maxRetries {
			backoff := retryAfter(resp, attempt)
			c.logger.Graph("retrying after HTTP error",
				"path", path, "status", resp.StatusCode,
				"attempt", attempt+1, "backoff", backoff.String())
			if err := c.sleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("graph: request canceled: %w", err)
			}
			attempt++
			continue
		}

		return nil, fmt.Errorf("graph: GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}
}

func isRetryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfter prefers the Retry-After header on throttled responses and
// falls back to linear backoff.
func retryAfter(resp *http.Response, attempt int) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return baseBackoff * time.Duration(attempt+1)
}

// sleepCtx waits for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
