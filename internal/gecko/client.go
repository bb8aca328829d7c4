// Package gecko implements the CoinGecko REST client used by the sync
// pipeline: rate-limited GETs with bounded constant-backoff retries and the
// vendor's 404/401 quirks handled in-layer.
package gecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"coinpulse/internal/logger"
	"coinpulse/internal/ratelimit"
)

const (
	defaultMaxAttempts  = 5
	defaultRetryBackoff = time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// ErrExhaustedRetries is returned once the retry budget for a request is
// spent. It is terminal: callers must abort the run, not skip the request.
var ErrExhaustedRetries = errors.New("exhausted retries")

// StatusError reports a non-success HTTP status that is neither a 404 nor a
// recoverable 401. It marks an attempt as retryable.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s)", e.Code, http.StatusText(e.Code))
}

// Client provides access to the CoinGecko REST API.
//
// Every attempt (including the 401 re-issue) passes through the rate
// limiter before touching the network.
type Client struct {
	baseURL      *url.URL
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
	limiter      *ratelimit.Limiter

	maxAttempts  int
	retryBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the vendor API key. The header name differs by tier:
// "pro" uses x-cg-pro-api-key, anything else the demo header.
func WithAPIKey(key, tier string) Option {
	return func(c *Client) {
		c.apiKey = key
		if tier == "pro" {
			c.apiKeyHeader = "x-cg-pro-api-key"
		} else {
			c.apiKeyHeader = "x-cg-demo-api-key"
		}
	}
}

// WithHTTPClient sets a custom HTTP client (tests inject httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryPolicy overrides the attempt budget and the fixed backoff
// between attempts.
func WithRetryPolicy(attempts int, wait time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		c.retryBackoff = wait
	}
}

// NewClient creates a REST client rooted at baseURL. All requests are gated
// by the given limiter.
func NewClient(baseURL string, limiter *ratelimit.Limiter, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		limiter:      limiter,
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get performs a GET for the relative, URL-escaped path appended to the
// base endpoint.
//
// Returns:
//   - body: decoded response body on success, nil on 404.
//   - found: false only for 404 — "no data", not a failure; callers keep going.
//   - err: terminal failure (retry budget spent, or context done).
//
// Behavior:
//   - 404: no retry, empty body, found=false, nil error.
//   - 401: one re-issue at the final redirected URL with the same default
//     headers, not counted against the retry budget; result evaluated as
//     normal.
//   - other non-2xx or transport error: fixed backoff, retried up to the
//     attempt budget, then ErrExhaustedRetries.
func (c *Client) Get(ctx context.Context, path string) ([]byte, bool, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, false, fmt.Errorf("parse request path %q: %w", path, err)
	}
	requestURL := c.baseURL.ResolveReference(rel).String()

	var body []byte
	found := true

	op := func() error {
		status, b, finalURL, err := c.once(ctx, requestURL)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized {
			// The vendor answers 401 at the pre-redirect URL for some tiers;
			// re-issue once where the redirect chain landed.
			logger.L().Warn().Str("path", path).Str("url", finalURL).Msg("unauthorized, re-issuing at redirected url")
			status, b, _, err = c.once(ctx, finalURL)
			if err != nil {
				return err
			}
		}

		switch {
		case status == http.StatusNotFound:
			logger.L().Warn().Str("path", path).Msg("resource not found")
			body = nil
			found = false
			return nil
		case status >= 200 && status < 300:
			body = b
			found = true
			return nil
		default:
			return &StatusError{Code: status}
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryBackoff), uint64(c.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		if ctx.Err() != nil {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("%w after %d attempts for %s: %v", ErrExhaustedRetries, c.maxAttempts, path, err)
	}

	return body, found, nil
}

// once issues a single rate-limited GET and returns the status, body and
// the URL the redirect chain ended on.
func (c *Client) once(ctx context.Context, requestURL string) (int, []byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, "", backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, nil, "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport errors are retryable
		return 0, nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, b, resp.Request.URL.String(), nil
}

// CoinList fetches the raw coin catalog payload.
func (c *Client) CoinList(ctx context.Context) ([]byte, bool, error) {
	return c.Get(ctx, "coins/list")
}

// ChartPath builds the market-chart request path for one identifier and a
// trailing day count.
func ChartPath(id string, days int) string {
	return fmt.Sprintf("coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily", url.PathEscape(id), days)
}
