// Package auth implements veda.Gate and veda.Accounts against the
// VedaAI auth endpoints. Credentials travel as cookies held by the HTTP
// client's jar.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/vedaai/veda"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultBaseURL = "http://localhost:3000"
	mePath         = "/api/auth/me"
	loginPath      = "/api/auth/login"
	registerPath   = "/api/auth/register"
	logoutPath     = "/api/auth/logout"
)

// Interface compliance checks.
var (
	_ veda.Gate     = (*Client)(nil)
	_ veda.Accounts = (*Client)(nil)
)

// Client calls the auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets the HTTP client. It should carry a cookie jar, see
// [NewJar]; without one the login cookie is dropped.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewJar returns a cookie jar that scopes cookies by public suffix.
func NewJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

type meResponse struct {
	Username string `json:"username"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authorize asks the server who the current cookies belong to. A 401 or
// 403 returns an error wrapping [veda.ErrUnauthorized].
func (c *Client) Authorize(ctx context.Context) (veda.Identity, error) {
	var me meResponse
	if err := c.do(ctx, http.MethodGet, mePath, nil, &me); err != nil {
		return veda.Identity{}, err
	}
	c.logger.Debug("authorized", zap.String("username", me.Username))
	return veda.Identity{Username: me.Username}, nil
}

// Login submits credentials and returns the server's message.
func (c *Client) Login(ctx context.Context, cr veda.Credentials) (string, error) {
	var resp messageResponse
	req := loginRequest{Email: cr.Email, Password: cr.Password}
	if err := c.do(ctx, http.MethodPost, loginPath, req, &resp); err != nil {
		return "", err
	}
	c.logger.Info("logged in", zap.String("email", cr.Email))
	return resp.Message, nil
}

// Register creates an account and returns the server's message.
func (c *Client) Register(ctx context.Context, r veda.Registration) (string, error) {
	var resp messageResponse
	req := registerRequest{Username: r.Username, Email: r.Email, Password: r.Password}
	if err := c.do(ctx, http.MethodPost, registerPath, req, &resp); err != nil {
		return "", err
	}
	c.logger.Info("registered", zap.String("username", r.Username))
	return resp.Message, nil
}

// Logout ends the server session. The server clears the cookie.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, logoutPath, struct{}{}, nil); err != nil {
		return err
	}
	c.logger.Info("logged out")
	return nil
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("auth: marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("auth: %w", parseHTTPError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("auth: decode response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx response from an auth endpoint.
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

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &StatusError{Code: resp.StatusCode}
	}
	var apiErr messageResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return &StatusError{Code: resp.StatusCode, Message: apiErr.Message}
}
