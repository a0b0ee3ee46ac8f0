// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package gateway is the HTTP client every admin call goes through.
// It attaches the session's bearer credential, normalizes failures into
// NetworkError, ServerError or StatusError, and tears the session down when
// the API answers 401. Each call is a single attempt: no retries, no backoff.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultLoginPath is where an expired session is redirected unless overridden.
const DefaultLoginPath = "/login"

// Request describes one API call. Path is joined to the client's base URL.
// Body is sent as JSON unless it is already []byte, json.RawMessage or an io.Reader.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client sends requests to a single API base URL on behalf of one session.
type Client struct {
	// baseURL is the base URL for all requests (e.g., "http://localhost:3001")
	baseURL string
	session Session
	client  *http.Client
	header  http.Header
	// loginPath is reported in SessionExpired events
	loginPath string
	onExpired SessionExpiredHandler
	log       *zap.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLoginPath sets the redirect target carried by SessionExpired.
func WithLoginPath(p string) Option {
	return func(c *Client) {
		if strings.TrimSpace(p) != "" {
			c.loginPath = p
		}
	}
}

// WithSessionExpiredHandler registers the handler invoked after a 401.
func WithSessionExpiredHandler(h SessionExpiredHandler) Option {
	return func(c *Client) { c.onExpired = h }
}

// WithHeader adds a header sent with every request (e.g. a service apikey).
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a Client for baseURL acting as session. A nil session sends
// every request unauthenticated.
func New(baseURL string, session Session, opts ...Option) *Client {
	if session == nil {
		session = Anonymous
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		session:   session,
		client:    &http.Client{Timeout: 30 * time.Second},
		header:    make(http.Header),
		loginPath: DefaultLoginPath,
		log:       zap.NewNop(),
		userAgent: "inkwell-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends req and returns the response when the status is 2xx.
//
// Failures come back as:
//   - *NetworkError when no response was received,
//   - *ServerError when the server sent an error body (kept verbatim),
//   - *StatusError when the server sent a non-2xx status without a body,
//   - the context error when ctx was cancelled or timed out.
//
// A 401 additionally expires the session and notifies the expiry handler
// before the body is read, so an unreadable 401 body still signs out.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Debug("request failed without response",
			zap.String("method", httpReq.Method),
			zap.String("path", req.Path),
			zap.Error(err))
		return nil, &NetworkError{Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if resp.StatusCode == http.StatusUnauthorized {
		c.expire(ctx, httpReq.Method, req.Path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ok {
			return nil, fmt.Errorf("read response from %s %s: %w", httpReq.Method, req.Path, err)
		}
		c.log.Debug("error body unreadable",
			zap.String("method", httpReq.Method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil, newStatusError(httpReq, resp, err)
	}

	c.log.Debug("request completed",
		zap.String("method", httpReq.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if ok {
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	if len(bytes.TrimSpace(body)) > 0 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: json.RawMessage(body)}
	}
	return nil, newStatusError(httpReq, resp, nil)
}

func newStatusError(req *http.Request, resp *http.Response, readErr error) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		Err:        readErr,
	}
}

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// newRequest builds the outgoing request and applies the standard headers.
func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, req.Path, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for k, vals := range c.header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vals := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token := strings.TrimSpace(c.session.AccessToken()); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else {
		httpReq.Header.Del("Authorization")
	}
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(raw), nil
	}
}

// expire clears the session and notifies the handler.
func (c *Client) expire(ctx context.Context, method, path string, status int) {
	clearErr := c.session.Expire()
	if clearErr != nil {
		c.log.Warn("failed to clear expired session", zap.Error(clearErr))
	}
	c.log.Debug("session expired", zap.String("redirect", c.loginPath), zap.String("path", path))
	if c.onExpired != nil {
		c.onExpired(ctx, SessionExpired{
			RedirectTo: c.loginPath,
			Method:     method,
			Path:       path,
			StatusCode: status,
			ClearErr:   clearErr,
		})
	}
}
