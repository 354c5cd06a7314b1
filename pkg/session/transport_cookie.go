package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the session cookie name when none is configured.
const DefaultCookieName = "sid"

// CookieTransport implements Transport using an HttpOnly cookie. The token
// itself is opaque and unguessable, so the cookie value is stored as-is.
type CookieTransport struct {
	name   string
	secure bool
	domain string
}

// CookieOption configures a CookieTransport.
type CookieOption func(*CookieTransport)

// WithCookieSecure sets the Secure flag (recommended for production).
func WithCookieSecure(secure bool) CookieOption {
	return func(t *CookieTransport) {
		t.secure = secure
	}
}

// WithCookieDomain sets an explicit cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return func(t *CookieTransport) {
		t.domain = domain
	}
}

// NewCookieTransport creates a cookie-based transport.
func NewCookieTransport(name string, opts ...CookieOption) *CookieTransport {
	if name == "" {
		name = DefaultCookieName
	}
	t := &CookieTransport{name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetToken extracts the session token from the cookie.
func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", ErrSessionNotFound
	}
	return c.Value, nil
}

// SetToken stores the session token in a cookie.
func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		Domain:   t.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode, // CSRF protection
	})
	return nil
}

// ClearToken expires the session cookie.
func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		Domain:   t.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

var _ Transport = (*CookieTransport)(nil)
