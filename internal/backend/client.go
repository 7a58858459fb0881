package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const defaultTimeout = 5 * time.Second

// Request describes one call against the admin API.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any    // JSON-encoded when non-nil
	Out      any    // a 2xx JSON body is decoded into it inside the chain
	Endpoint string // short name used in logs, metrics and errors

	// Quiet requests are handled by their caller; interceptors pass them through.
	Quiet bool
}

// Response is a received 2xx response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Doer sends a request. Every error it returns is a *Error.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) { return f(ctx, req) }

// Middleware wraps a Doer. Middlewares see every failure before the caller does.
type Middleware func(next Doer) Doer

// Client talks to the MASQUE admin API. The session cookie set by the server
// lives in the client's jar and is attached to every request automatically.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
	chain  Doer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the server at baseURL (e.g. "http://127.0.0.1:8080").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", base.Scheme)
	}
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	c.chain = c.logRequests(DoerFunc(c.do))
	return c, nil
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string { return c.base.String() }

// Use installs a middleware around the transport. Middlewares installed later
// run first.
func (c *Client) Use(mw Middleware) {
	c.chain = mw(c.chain)
}

// Send issues req through the middleware chain.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, clientError("", errors.New("nil request"))
	}
	if req.Endpoint == "" {
		req.Endpoint = strings.TrimPrefix(req.Path, "/api/")
	}
	return c.chain.Do(ctx, req)
}

// do is the bottom of the chain: build, dispatch, classify.
func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	hreq, err := c.build(ctx, req)
	if err != nil {
		return nil, clientError(req.Endpoint, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, clientError(req.Endpoint, err)
	}
	resp, err := c.http.Do(hreq)
	if err != nil {
		return nil, networkError(req.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(req.Endpoint, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(req.Endpoint, resp, body)
	}
	if req.Out != nil {
		if err := decodeJSON(req.Endpoint, resp.StatusCode, body, req.Out); err != nil {
			return nil, err
		}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	u, err := c.base.Parse(c.base.Path + req.Path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-ID", uuid.NewString())
	return hreq, nil
}

// logRequests traces every call at debug level. Headers and bodies are never
// logged; they may carry the session cookie or a password.
func (c *Client) logRequests(next Doer) Doer {
	return DoerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		start := time.Now()
		resp, err := next.Do(ctx, req)
		attrs := []any{
			"method", req.Method,
			"endpoint", req.Endpoint,
			"duration", time.Since(start),
		}
		if err != nil {
			e, _ := AsError(err)
			if e != nil {
				attrs = append(attrs, "kind", e.Kind.String(), "status", e.Status)
			}
			c.logger.Debug("api request failed", append(attrs, "error", err)...)
			return nil, err
		}
		c.logger.Debug("api request", append(attrs, "status", resp.Status)...)
		return resp, nil
	})
}
