package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config holds environment-driven client settings.
type Config struct {
	BaseURL         string        `env:"AUTH_API_URL,required"`
	RefreshInterval time.Duration `env:"AUTH_REFRESH_INTERVAL" envDefault:"5m"`
}

// User is the authenticated user as reported by the auth API.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	AuthMethod string    `json:"auth_method"`
	Roles      []string  `json:"roles,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is the API's view of the current session.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Client is a facade over the auth HTTP API. It carries session proof
// automatically, via a cookie jar by default or a bearer token when
// configured, and keeps a cached copy of the current session so reads
// don't hit the network.
type Client struct {
	baseURL         string
	http            *http.Client
	bearer          string
	refreshInterval time.Duration

	mu        sync.RWMutex
	current   *Session
	fetchedAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller is
// responsible for attaching a cookie jar if cookie sessions are used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBearerToken sends the session token in the Authorization header
// instead of relying on cookies.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.bearer = token
	}
}

// WithRefreshInterval overrides how long a cached session is served before
// revalidation.
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.refreshInterval = interval
		}
	}
}

// New creates a client for the auth API at cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Minute
	}

	// Sessions ride on a cookie; the jar makes every request carry it.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:         base.String(),
		http:            &http.Client{Jar: jar, Timeout: 30 * time.Second},
		refreshInterval: refreshInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SignUp registers a new user and caches the issued session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.postCredentials(ctx, "/auth/signup", email, password)
}

// SignIn authenticates with email and password and caches the issued
// session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.postCredentials(ctx, "/auth/login", email, password)
}

func (c *Client) postCredentials(ctx context.Context, path, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	sess, err := c.doSession(req)
	if err != nil {
		return nil, err
	}
	c.setCurrent(sess)
	return sess, nil
}

// CurrentSession returns the cached session without touching the network.
// Returns nil when no session is cached or the cached one has expired; a
// cache older than the refresh interval is still returned, callers wanting
// a revalidated view use Session or Refresh.
func (c *Client) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil || time.Now().After(c.current.ExpiresAt) {
		return nil
	}
	copied := *c.current
	return &copied
}

// Session returns the current session, revalidating against the server when
// the cache is empty or older than the refresh interval.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	current, fetchedAt := c.current, c.fetchedAt
	c.mu.RUnlock()

	if current != nil && time.Since(fetchedAt) < c.refreshInterval && time.Now().Before(current.ExpiresAt) {
		copied := *current
		return &copied, nil
	}
	return c.Refresh(ctx)
}

// Refresh revalidates the session against the server and updates the cache.
// An unauthenticated response clears the cache and returns
// ErrUnauthenticated.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/session", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	sess, err := c.doSession(req)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			c.clearCurrent()
		}
		return nil, err
	}
	c.setCurrent(sess)
	return sess, nil
}

// SignOut revokes the session server-side and clears the cache. The cache is
// cleared even when the request fails; the caller is signed out locally
// either way.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.clearCurrent()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}
	return nil
}

func (c *Client) doSession(req *http.Request) (*Session, error) {
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case resp.StatusCode >= http.StatusBadRequest:
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	var sess Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("%w: invalid response body", ErrRequestFailed)
	}
	return &sess, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
}

func (c *Client) setCurrent(sess *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = sess
	c.fetchedAt = time.Now()
}

func (c *Client) clearCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.fetchedAt = time.Time{}
}
