package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/guia-app/guia/internal/logging"
)

const (
	DefaultTimeout = 30 * time.Second

	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 10 << 20
)

// Client talks to the guIA API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger

	mu             sync.RWMutex
	tokenSource    func() string
	onUnauthorized func(ctx context.Context)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A timeout set with
// WithTimeout still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		clone := *hc
		clone.Timeout = c.http.Timeout
		c.http = &clone
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenSource = fn }
}

func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a Client for the API rooted at baseURL,
// e.g. "http://localhost:8080/api/v1/".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource binds the function that supplies the bearer token.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = fn
}

// SetUnauthorizedHandler binds the function invoked on every 401.
func (c *Client) SetUnauthorizedHandler(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) token() string {
	c.mu.RLock()
	fn := c.tokenSource
	c.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

func (c *Client) unauthorized(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

// call describes one request.
type call struct {
	method string
	path   []string
	query  any
	body   any
	out    any

	// credentialCheck marks login/registration: a 401 there is a rejected
	// password, not an expired session.
	credentialCheck bool

	// raw, when set, is sent as is with rawType instead of JSON-encoding body.
	raw     io.Reader
	rawType string
}

func (c *Client) endpoint(path []string, q any) (string, error) {
	u := c.baseURL.JoinPath(path...)
	if q != nil {
		values, err := query.Values(q)
		if err != nil {
			return "", fmt.Errorf("failed to encode query: %w", err)
		}
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	endpoint, err := c.endpoint(cl.path, cl.query)
	if err != nil {
		return err
	}

	body := cl.raw
	contentType := cl.rawType
	if body == nil && cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	if contentType == "" {
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := gonanoid.Must(12)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With("method", cl.method, "path", req.URL.Path, "request_id", requestID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "api request failed", "error", err, "elapsed", time.Since(started))
		return transportError(err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "api response", "status", resp.StatusCode, "elapsed", time.Since(started))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := statusError(resp.StatusCode, errorMessage(raw))
		if resp.StatusCode == http.StatusUnauthorized && !cl.credentialCheck {
			log.Info(ctx, "api rejected credentials, invalidating session")
			c.unauthorized(ctx)
		}
		return apiErr
	}

	return decodeData(raw, cl.out)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

func decodeData(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
