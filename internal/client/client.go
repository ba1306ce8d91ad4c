package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/pkg/config"
	"github.com/noah-isme/timetable-console/pkg/middleware/requestid"
)

// UnauthorizedNotice is shown whenever the backend rejects the session.
const UnauthorizedNotice = "Session expired or Unauthorized. Please log in again."

// Requester is the call surface controllers depend on.
type Requester interface {
	Request(ctx context.Context, method, path string, body interface{}) Outcome
}

// Notifier surfaces a blocking notice to the operator.
type Notifier interface {
	Notify(message string)
}

// Navigator moves the operator to another entry point.
type Navigator interface {
	Redirect(path string)
}

// CookieSource supplies the upstream session cookies for a call.
type CookieSource func(ctx context.Context) []*http.Cookie

// Observer records upstream call metrics.
type Observer interface {
	ObserveUpstream(method, route, outcome string, duration time.Duration)
}

// Client is the single path through which the console talks to the
// timetable backend.
type Client struct {
	baseURL   string
	loginPath string
	http      *http.Client
	notifier  Notifier
	navigator Navigator
	cookies   CookieSource
	observer  Observer
	logger    *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithNotifier sets the notice sink used on session failures.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithNavigator sets the redirect target handler used on session failures.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithCookieSource attaches session cookies to every call.
func WithCookieSource(src CookieSource) Option {
	return func(c *Client) { c.cookies = src }
}

// WithObserver records per-call metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a client for the configured backend.
func New(cfg config.APIConfig, opts ...Option) *Client {
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/"
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		loginPath: loginPath,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of the client with extra options applied. The web
// console uses it to bind request-scoped notifiers and navigators.
func (c *Client) With(opts ...Option) *Client {
	clone := *c
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

// BaseURL returns the backend root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// LoginPath returns the entry point unauthorized callers are sent to.
func (c *Client) LoginPath() string {
	return c.loginPath
}

// Request performs one JSON call. It never retries. An unauthorized status
// notifies the operator and redirects to the login entry point; network and
// decoding failures are logged. Any other status is returned as parsed data
// for the caller to interpret.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) Outcome {
	start := time.Now()
	outcome := c.do(ctx, method, path, body)
	if c.observer != nil {
		c.observer.ObserveUpstream(method, routeLabel(path), outcome.Kind.String(), time.Since(start))
	}
	return outcome
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) Outcome {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.transportFailure(method, path, 0, fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return c.transportFailure(method, path, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.HeaderKey, requestid.FromContext(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookies != nil {
		for _, cookie := range c.cookies(ctx) {
			req.AddCookie(cookie)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportFailure(method, path, 0, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info("upstream session rejected", zap.String("method", method), zap.String("path", path))
		notifier, navigator := c.surfaces(ctx)
		if notifier != nil {
			notifier.Notify(UnauthorizedNotice)
		}
		if navigator != nil {
			navigator.Redirect(c.loginPath)
		}
		return Outcome{Kind: OutcomeUnauthorized, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportFailure(method, path, resp.StatusCode, fmt.Errorf("read response body: %w", err))
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !json.Valid(raw) {
		return c.transportFailure(method, path, resp.StatusCode, errors.New("malformed JSON response"))
	}

	return Outcome{Kind: OutcomeOK, Status: resp.StatusCode, Body: json.RawMessage(raw)}
}

type surfacesKey struct{}

type surfaces struct {
	notifier  Notifier
	navigator Navigator
}

// ContextWithSurfaces scopes the notice and redirect surfaces to calls made
// with ctx. They take precedence over the client's own.
func ContextWithSurfaces(ctx context.Context, notifier Notifier, navigator Navigator) context.Context {
	return context.WithValue(ctx, surfacesKey{}, surfaces{notifier: notifier, navigator: navigator})
}

func (c *Client) surfaces(ctx context.Context) (Notifier, Navigator) {
	if s, ok := ctx.Value(surfacesKey{}).(surfaces); ok {
		return s.notifier, s.navigator
	}
	return c.notifier, c.navigator
}

func (c *Client) transportFailure(method, path string, status int, err error) Outcome {
	c.logger.Warn("upstream call failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Error(err),
	)
	return Outcome{Kind: OutcomeTransport, Status: status, Err: err}
}

// routeLabel collapses identifiers so metrics stay low-cardinality:
// /api/faculties/3/subjects becomes /api/faculties/:id/subjects.
func routeLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 {
		parts[2] = ":id"
	}
	return "/" + strings.Join(parts, "/")
}
