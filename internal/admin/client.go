package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-kong/internal/instrumentation"
	"github.com/giantswarm/mcp-kong/internal/logging"
)

const (
	// DefaultBaseURL is used when Config.BaseURL is empty.
	DefaultBaseURL = "http://localhost:8001"

	// DefaultMaxPages bounds GetPluginStats when Config.MaxPages is zero.
	DefaultMaxPages = 1000

	contentTypeJSON = "application/json"
)

// Config holds the immutable Admin API client configuration.
// It is built once by the caller; the client never reads the environment.
type Config struct {
	// BaseURL of the Admin API, e.g. http://localhost:8001.
	BaseURL string

	// Token is sent as "Authorization: Bearer <token>" when non-empty.
	Token string

	// Timeout bounds a single HTTP exchange. Zero leaves it to the context.
	Timeout time.Duration

	// MaxPages bounds plugin pagination. Zero means DefaultMaxPages.
	MaxPages int
}

// Client talks to a gateway Admin API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	hasToken   bool
	maxPages   int
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its transport still
// gets the bearer credential layered on top when a token is configured.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.MaxPages < 0 {
		return nil, errors.New("max pages must not be negative")
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		hasToken: cfg.Token != "",
		maxPages: cfg.MaxPages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		c.logger.Warn("admin API base URL not set, using default", logging.Host(DefaultBaseURL))
		c.baseURL = DefaultBaseURL
	}
	if c.maxPages == 0 {
		c.maxPages = DefaultMaxPages
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   cfg.Timeout,
		}
	} else {
		clone := *c.httpClient
		c.httpClient = &clone
	}

	if cfg.Token != "" {
		base := c.httpClient.Transport
		if base == nil {
			base = cleanhttp.DefaultPooledTransport()
		}
		c.httpClient.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   base,
		}
	}

	return c, nil
}

// BaseURL returns the Admin API base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether a bearer credential is configured.
func (c *Client) HasToken() bool {
	return c.hasToken
}

// MaxPages returns the plugin pagination bound in use.
func (c *Client) MaxPages() int {
	return c.maxPages
}

// Request performs a single Admin API call against baseURL+endpoint.
//
// method defaults to GET. body is JSON-encoded and sent only for non-GET
// requests. Errors are always *UpstreamError, *NetworkError or *RequestError.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any) (RawJSON, error) {
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := instrumentation.StartAdminSpan(ctx, method, endpoint)
	defer span.End()

	start := time.Now()
	statusCode := 0
	raw, err := c.do(ctx, endpoint, method, body, &statusCode)
	duration := time.Since(start)

	c.metrics.RecordAdminRequest(ctx, method, endpoint, statusCode, duration)
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, statusCode))

	logger := c.logger.With(logging.Method(method), logging.Endpoint(endpoint))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		cause := errors.Unwrap(err)
		if cause == nil {
			cause = err
		}
		logger.Debug("admin API request failed",
			logging.StatusCode(statusCode),
			logging.Duration(duration),
			logging.SanitizedErr(cause))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	logger.Debug("admin API request completed",
		logging.StatusCode(statusCode),
		logging.Duration(duration))
	return raw, nil
}

func (c *Client) do(ctx context.Context, endpoint, method string, body any, statusCode *int) (RawJSON, error) {
	var reader io.Reader
	if method != http.MethodGet && body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	*statusCode = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(resp.StatusCode, data)
	}

	raw, err := rawFromBody(data)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return raw, nil
}

// GetStatus returns the raw /status document.
func (c *Client) GetStatus(ctx context.Context) (RawJSON, error) {
	return c.Request(ctx, "/status", http.MethodGet, nil)
}

// GetNodeInfo returns the raw node information document served at /.
func (c *Client) GetNodeInfo(ctx context.Context) (RawJSON, error) {
	return c.Request(ctx, "/", http.MethodGet, nil)
}

// GetMetrics returns /metrics. Prometheus text bodies come back as a JSON string.
func (c *Client) GetMetrics(ctx context.Context) (RawJSON, error) {
	return c.Request(ctx, "/metrics", http.MethodGet, nil)
}

// GetHealth returns the raw /health document.
func (c *Client) GetHealth(ctx context.Context) (RawJSON, error) {
	return c.Request(ctx, "/health", http.MethodGet, nil)
}
