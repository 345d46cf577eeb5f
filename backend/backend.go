// Package backend implements [parley.Backend] over HTTP for the assistant
// service: a streaming send endpoint plus history fetch and clear.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/parley"
	parleyjson "github.com/fwojciec/parley/json"
	"go.uber.org/zap"
)

// DefaultBaseURL is the API root of a locally running assistant service.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

const (
	sendPath    = "/send-message"
	historyPath = "/user/chats"
	clearPath   = "/conversations"
)

// Interface compliance check.
var _ parley.Backend = (*Client)(nil)

// Client implements [parley.Backend].
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         parley.TokenSource
	onUnauthorized parley.UnauthorizedHandler
	logger         *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client. The client should not set a
// Timeout, which would cut long streams short.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets where bearer tokens come from. Without one requests
// are sent unauthenticated.
func WithTokenSource(ts parley.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler sets the hook run whenever the service answers
// 401.
func WithUnauthorizedHandler(h parley.UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SendMessage posts req and returns the event-stream body. The caller must
// close it. Cancelling ctx aborts the request and unblocks pending reads.
func (c *Client) SendMessage(ctx context.Context, req parley.SendRequest) (io.ReadCloser, error) {
	body, err := parleyjson.MarshalSendRequest(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, sendPath, body, "text/event-stream")
	if err != nil {
		return nil, err
	}
	c.logger.Debug("stream opened", zap.String("content_type", resp.Header.Get("Content-Type")))
	return resp.Body, nil
}

// FetchHistory returns the stored conversation in order.
func (c *Client) FetchHistory(ctx context.Context) ([]parley.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, historyPath, nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read history: %w: %w", parley.ErrTransport, err)
	}
	msgs, err := parleyjson.UnmarshalHistory(data)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	c.logger.Debug("history fetched", zap.Int("messages", len(msgs)))
	return msgs, nil
}

// ClearHistory deletes the stored conversation of userID.
func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	body, err := parleyjson.MarshalClearRequest(userID)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	resp, err := c.do(ctx, http.MethodDelete, clearPath, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do sends one request and returns the response if its status is 2xx.
// On any other status the body is consumed into a StatusError.
func (c *Client) do(ctx context.Context, method, path string, body []byte, accept string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", accept)
	if err := c.authorize(httpReq); err != nil {
		return nil, err
	}

	c.logger.Debug("request", zap.String("method", method), zap.String("path", path))
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w: %w", method, path, parley.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		serr := parseHTTPError(resp)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(serr)
		}
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, serr)
	}
	return resp, nil
}

// authorize attaches the bearer token. A missing token is not an error
// here; the service decides whether the endpoint needs one.
func (c *Client) authorize(r *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	tok, err := c.tokens.Token()
	if errors.Is(err, parley.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backend: token: %w: %w", parley.ErrTransport, err)
	}
	r.Header.Set("Authorization", "Bearer "+tok)
	return nil
}
