// Package sse implements veda.Transport over Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vedaai/veda"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://localhost:3000"
	generatePath   = "/api/chat/generate"

	// maxBackoff caps the wait between connection attempts.
	maxBackoff = 30 * time.Second
)

// Interface compliance check.
var _ veda.Transport = (*Client)(nil)

// Client implements [veda.Transport] for the chat generate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   int
	backoff    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. The client must not set a
// Timeout, which would cut long streams short; the cookie jar it carries
// supplies the session credentials.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry makes up to attempts connection attempts, waiting backoff,
// then twice that, and so on between them. Only establishing the
// connection is retried; a stream that already delivered data never is.
// The default is a single attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// New creates a new [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
		attempts:   1,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open returns a stream for query. The connection is made on the first
// call to Next, so Open never blocks on the network.
func (c *Client) Open(ctx context.Context, query string) (veda.Stream, error) {
	u, err := url.Parse(c.baseURL + generatePath)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	u.RawQuery = url.Values{"q": {query}}.Encode()
	target := u.String()
	return newStream(ctx, func(ctx context.Context) (io.ReadCloser, error) {
		return c.connect(ctx, target)
	}), nil
}

func (c *Client) connect(ctx context.Context, target string) (io.ReadCloser, error) {
	for attempt := 1; ; attempt++ {
		body, err := c.dial(ctx, target)
		if err == nil {
			return body, nil
		}
		if attempt >= c.attempts || !retryable(ctx, err) {
			return nil, err
		}
		delay := backoffDelay(c.backoff, attempt)
		c.logger.Debug("retrying stream connection",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) dial(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	c.logger.Debug("stream connected", zap.String("url", target))
	return resp.Body, nil
}

// backoffDelay returns the wait after the given failed attempt: base,
// doubled per attempt, capped at maxBackoff.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt && delay < maxBackoff; i++ {
		delay *= 2
	}
	return min(delay, maxBackoff)
}

// retryable reports whether a failed connection attempt may be repeated.
// Client errors (4xx) and cancellation are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

// StatusError is a non-200 response from the generate endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// Unwrap maps authentication failures to veda.ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return veda.ErrUnauthorized
	}
	return nil
}

type apiErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &StatusError{Code: resp.StatusCode}
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &StatusError{Code: resp.StatusCode, Message: string(body)}
	}
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: msg}
}
