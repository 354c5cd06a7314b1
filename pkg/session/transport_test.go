package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/session"
)

func TestCookieTransport(t *testing.T) {
	t.Parallel()

	t.Run("set and get round trip", func(t *testing.T) {
		t.Parallel()

		transport := session.NewCookieTransport("sid")

		w := httptest.NewRecorder()
		require.NoError(t, transport.SetToken(w, "tok123", time.Hour))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.Equal(t, "tok123", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, 3600, cookies[0].MaxAge)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookies[0])

		token, err := transport.GetToken(r)
		require.NoError(t, err)
		assert.Equal(t, "tok123", token)
	})

	t.Run("secure flag", func(t *testing.T) {
		t.Parallel()

		transport := session.NewCookieTransport("sid", session.WithCookieSecure(true))

		w := httptest.NewRecorder()
		require.NoError(t, transport.SetToken(w, "tok", time.Hour))
		assert.True(t, w.Result().Cookies()[0].Secure)
	})

	t.Run("missing cookie is not found", func(t *testing.T) {
		t.Parallel()

		transport := session.NewCookieTransport("sid")
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := transport.GetToken(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("clear expires the cookie", func(t *testing.T) {
		t.Parallel()

		transport := session.NewCookieTransport("sid")
		w := httptest.NewRecorder()
		require.NoError(t, transport.ClearToken(w))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func TestHeaderTransport(t *testing.T) {
	t.Parallel()

	t.Run("bearer round trip", func(t *testing.T) {
		t.Parallel()

		transport := session.NewHeaderTransport("Authorization")

		w := httptest.NewRecorder()
		require.NoError(t, transport.SetToken(w, "tok123", time.Hour))
		assert.Equal(t, "Bearer tok123", w.Header().Get("Authorization"))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer tok123")

		token, err := transport.GetToken(r)
		require.NoError(t, err)
		assert.Equal(t, "tok123", token)
	})

	t.Run("missing or malformed header is not found", func(t *testing.T) {
		t.Parallel()

		transport := session.NewHeaderTransport("Authorization")

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := transport.GetToken(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err = transport.GetToken(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestCompositeTransport(t *testing.T) {
	t.Parallel()

	transport := session.NewCompositeTransport(
		session.NewCookieTransport("sid"),
		session.NewHeaderTransport("Authorization"),
	)

	t.Run("falls back across transports", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer from-header")

		token, err := transport.GetToken(r)
		require.NoError(t, err)
		assert.Equal(t, "from-header", token)

		r2 := httptest.NewRequest(http.MethodGet, "/", nil)
		r2.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"})

		token, err = transport.GetToken(r2)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", token)
	})

	t.Run("sets token on all transports", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, transport.SetToken(w, "tok", time.Hour))

		assert.Len(t, w.Result().Cookies(), 1)
		assert.Equal(t, "Bearer tok", w.Header().Get("Authorization"))
	})

	t.Run("not found when no transport has a token", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := transport.GetToken(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}
