// Package client is the JSON transport to the blood-donation REST backend.
// It attaches the bearer token, tags requests with an X-Request-ID and
// decodes the {success|ok, message|msg, token} response envelope.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedResponse is returned when the backend answers with a body that
// is not a JSON object.
var ErrMalformedResponse = errors.New("client: malformed response")

const headerRequestID = "X-Request-ID"

// Request is one outbound call. Body is encoded as JSON when non-nil.
type Request struct {
	Method string
	Path   string
	Body   any
}

// Response is the decoded envelope. Fields keeps every top-level key of the
// body, envelope keys included.
type Response struct {
	StatusCode int
	Success    bool
	Message    string
	Token      string
	Fields     map[string]any
}

// OK reports a 2xx status with a truthy success flag.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.Success
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client (default: http.DefaultClient).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokens sets the store consulted for the bearer token.
func WithTokens(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithLogger sets the zap logger. Bodies are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestID overrides the request id generator.
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// Client talks to one backend base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    TokenStore
	logger    *zap.Logger
	requestID func() string
}

// New returns a client for baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}

	c := &Client{
		base:      base,
		http:      http.DefaultClient,
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Tokens returns the configured token store, possibly nil.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Do performs req and decodes the envelope. Network failures and bodies that
// are not JSON objects are errors; a decoded failure envelope is not.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	if ctx == nil {
		return Response{}, errors.New("client: context is nil")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("client: encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.Path), body)
	if err != nil {
		return Response{}, fmt.Errorf("client: request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	id := c.requestID()
	httpReq.Header.Set(headerRequestID, id)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("request_id", id),
			zap.Error(err))
		return Response{}, fmt.Errorf("client: do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.String("request_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	fields, err := decodeObject(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w: status %d: %v", ErrMalformedResponse, resp.StatusCode, err)
	}
	return envelope(resp.StatusCode, fields), nil
}

// Fetch issues a GET on path and returns the list found at listPath, a
// dot-separated path into the body ("" when the body itself is the list).
func (c *Client) Fetch(ctx context.Context, path, listPath string) ([]map[string]any, error) {
	if ctx == nil {
		return nil, errors.New("client: context is nil")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, fmt.Errorf("client: request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, c.requestID())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items := extractList(payload, listPath)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		return path
	}
	joined := *c.base
	joined.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	joined.RawQuery = ref.RawQuery
	return joined.String()
}

func decodeObject(r io.Reader) (map[string]any, error) {
	var fields map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("body is not an object")
	}
	return fields, nil
}

func envelope(status int, fields map[string]any) Response {
	resp := Response{StatusCode: status, Fields: fields}

	flag, found := lookupBool(fields, "success", "ok")
	if found {
		resp.Success = flag
	} else {
		resp.Success = status >= 200 && status < 300
	}
	resp.Message = lookupString(fields, "message", "msg", "error")
	resp.Token = lookupString(fields, "token")
	return resp
}

func lookupBool(fields map[string]any, keys ...string) (bool, bool) {
	for _, key := range keys {
		if v, ok := fields[key].(bool); ok {
			return v, true
		}
	}
	return false, false
}

func lookupString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func extractList(payload any, path string) []any {
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = node[segment]
		}
	}
	list, _ := cur.([]any)
	return list
}

// Lookup walks a dot-separated path through nested objects.
func Lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
