// Package apiclient is the HTTP collaborator every service goes through.
// Package apiclient est le client HTTP utilisé par tous les services.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "backoffice-client/1.0"
	maxBodyBytes     = 16 << 20 // 16 MB

	// RequestIDHeader carries the correlation ID of each call / Porte l'ID de corrélation de chaque appel
	RequestIDHeader = "X-Request-ID"
)

// MetricsRecorder receives request metrics / Reçoit les métriques de requêtes
type MetricsRecorder interface {
	RecordAPIRequest(method, resource string, status int, duration time.Duration)
	RecordThrottleWait(wait time.Duration)
}

// Options configures a Client / Configure un Client
type Options struct {
	BaseURL     string
	Timeout     time.Duration // Fixed per-request timeout / Timeout fixe par requête
	UserAgent   string
	Credentials ports.CredentialProvider
	Limiter     *rate.Limiter // Client-side throttle, nil disables it / Limitation côté client, nil pour désactiver
	Metrics     MetricsRecorder
	HTTPClient  *http.Client
}

// Client implements ports.HTTPClient over net/http / Implémente ports.HTTPClient avec net/http
type Client struct {
	base        *url.URL
	http        *http.Client
	userAgent   string
	credentials ports.CredentialProvider
	limiter     *rate.Limiter
	metrics     MetricsRecorder
}

var _ ports.HTTPClient = (*Client)(nil)

// New creates a client for the API rooted at opts.BaseURL / Crée un client pour l'API
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", opts.BaseURL)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	// Work on a copy so the caller's client keeps its own timeout
	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		c := *opts.HTTPClient
		httpClient = &c
	}
	httpClient.Timeout = opts.Timeout

	return &Client{
		base:        base,
		http:        httpClient,
		userAgent:   opts.UserAgent,
		credentials: opts.Credentials,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
	}, nil
}

// Get implements ports.HTTPClient.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*ports.Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post implements ports.HTTPClient.
func (c *Client) Post(ctx context.Context, path string, body any) (*ports.Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put implements ports.HTTPClient.
func (c *Client) Put(ctx context.Context, path string, body any) (*ports.Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

// Delete implements ports.HTTPClient.
func (c *Client) Delete(ctx context.Context, path string) (*ports.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// resourceOf returns the first path segment, used as a low-cardinality metric label.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*ports.Response, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(method, path, 0, time.Since(start))
		slog.Warn("api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	duration := time.Since(start)
	c.record(method, path, resp.StatusCode, duration)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	slog.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", duration,
		"request_id", requestID)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    backendMessage(data),
			Body:       data,
		}
	}

	return &ports.Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.credentials == nil {
		return nil
	}
	token, err := c.credentials.Token(ctx)
	if errors.Is(err, ports.ErrNoCredentials) {
		slog.Debug("api request without credentials", "path", req.URL.Path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond && c.metrics != nil {
		c.metrics.RecordThrottleWait(waited)
	}
	return nil
}

func (c *Client) record(method, path string, status int, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordAPIRequest(method, resourceOf(path), status, d)
	}
}
