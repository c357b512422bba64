// Package backend is a client for the remote commerce REST API that owns
// products, shops, orders, balances and authentication.
package backend

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

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultUserAgent = "storefront/1.0"
)

// ErrNoToken is returned by endpoints that need a signed-in user when the
// client has no access token.
var ErrNoToken = errors.New("backend: access token required")

// Cache is an optional store for GET response bodies with ETag revalidation.
type Cache interface {
	Read(key string, ttl time.Duration) (body []byte, etag string, ok bool)
	Write(key string, body []byte, etag string)
	ETag(key string) string
}

type Client struct {
	http      *http.Client
	baseURL   *url.URL
	userAgent string
	logger    zerolog.Logger

	token string // set on request-scoped copies from WithToken

	cache Cache // optional; nil means no cache
	ttl   time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
			c.baseURL = u
		}
	}
}

// WithCache enables the response cache. Bodies younger than ttl are served
// without a request; older ones are revalidated with If-None-Match. A zero
// ttl always revalidates.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) { c.cache, c.ttl = cache, ttl }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(opts ...Option) (*Client, error) {
	u, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   u,
		userAgent: DefaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// WithToken returns a copy of the client that sends token as a bearer
// credential. Responses fetched through the copy are never cached.
func (c *Client) WithToken(ctx context.Context, token string) *Client {
	cp := *c
	cp.token = token
	base := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	authed := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	authed.Timeout = c.http.Timeout
	cp.http = authed
	return &cp
}

// Revalidating returns a copy that never serves a stored body without asking
// the backend. Cached ETags are still sent, so an unchanged list costs a 304.
// Callers that keep their own freshness window fetch through it.
func (c *Client) Revalidating() *Client {
	cp := *c
	cp.ttl = 0
	return &cp
}

func (c *Client) newReq(ctx context.Context, method, p string, q map[string]string, body io.Reader) (*http.Request, string, error) {
	u := *c.baseURL
	// keep the backend's trailing slashes; path.Join would strip them
	u.Path = strings.TrimRight(u.Path, "/") + p
	qq := u.Query()
	for k, v := range q {
		qq.Set(k, v)
	}
	u.RawQuery = qq.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, u.String(), nil
}

// get returns the raw body of a successful GET.
func (c *Client) get(ctx context.Context, p string, q map[string]string) ([]byte, error) {
	req, cacheKey, err := c.newReq(ctx, http.MethodGet, p, q, nil)
	if err != nil {
		return nil, err
	}

	// per-user responses must never land in the shared cache
	cacheable := c.cache != nil && c.token == ""
	if cacheable {
		if c.ttl > 0 {
			if body, _, ok := c.cache.Read(cacheKey, c.ttl); ok {
				return body, nil
			}
		}
		if etag := c.cache.ETag(cacheKey); etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", p, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if cacheable {
			if body, etag, ok := c.cache.Read(cacheKey, 0); ok {
				c.cache.Write(cacheKey, body, etag)
				c.logger.Debug().Str("path", p).Msg("not modified, reusing cached body")
				return body, nil
			}
		}
		return nil, fmt.Errorf("GET %s: 304 but no cached body", p)
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("GET %s: read body: %w", p, err)
		}
		if cacheable {
			c.cache.Write(cacheKey, body, resp.Header.Get("ETag"))
		}
		return body, nil
	default:
		return nil, newAPIError(http.MethodGet, p, resp)
	}
}

// getJSON performs a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, p string, q map[string]string, out any) error {
	body, err := c.get(ctx, p, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", p, err)
	}
	return nil
}

// postJSON sends in as a JSON body and decodes a 2xx response into out when
// out is non-nil.
func (c *Client) postJSON(ctx context.Context, p string, in, out any, header http.Header) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("POST %s: encode: %w", p, err)
	}
	req, _, err := c.newReq(ctx, http.MethodPost, p, nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", p, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(http.MethodPost, p, resp)
	}
	if out == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("POST %s: read body: %w", p, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("POST %s: decode: %w", p, err)
	}
	return nil
}

func (c *Client) requireToken() error {
	if c.token == "" {
		return ErrNoToken
	}
	return nil
}
