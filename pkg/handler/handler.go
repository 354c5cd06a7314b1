package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/authkit/pkg/auth"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// Handler exposes the auth gateway over HTTP.
type Handler struct {
	gw         *auth.Gateway
	transport  session.Transport
	sessionTTL time.Duration
	health     func(ctx context.Context) error
	log        *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithTransport sets how session tokens travel on requests and responses.
// Defaults to the session cookie transport.
func WithTransport(t session.Transport) Option {
	return func(h *Handler) {
		if t != nil {
			h.transport = t
		}
	}
}

// WithSessionTTL sets the lifetime communicated to the transport (cookie
// Max-Age). Should match the gateway's session TTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(h *Handler) {
		if ttl > 0 {
			h.sessionTTL = ttl
		}
	}
}

// WithHealthcheck sets the readiness probe behind GET /health.
func WithHealthcheck(fn func(ctx context.Context) error) Option {
	return func(h *Handler) {
		if fn != nil {
			h.health = fn
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates an HTTP handler over the gateway.
func New(gw *auth.Gateway, opts ...Option) *Handler {
	h := &Handler{
		gw:         gw,
		transport:  session.NewCookieTransport(session.DefaultCookieName),
		sessionTTL: 30 * 24 * time.Hour,
		health:     func(ctx context.Context) error { return nil },
		log:        logger.NewDiscard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router builds the chi router with all auth routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignUp)
		r.Post("/login", h.handleSignIn)
		r.Post("/logout", h.handleSignOut)
		r.Get("/session", h.handleSession)
		r.Post("/forgot-password", h.handleForgotPassword)
		r.Post("/reset-password", h.handleResetPassword)
		r.Get("/{provider}", h.handleProviderRedirect)
		r.Get("/{provider}/callback", h.handleProviderCallback)
	})

	return r
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	AuthMethod string    `json:"auth_method"`
	Roles      []string  `json:"roles,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type sessionResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func newSessionResponse(user *auth.User, sess *session.Session) sessionResponse {
	return sessionResponse{
		User: userResponse{
			ID:         user.ID.String(),
			Email:      user.Email,
			Name:       user.Name,
			AuthMethod: user.AuthMethod,
			Roles:      user.Roles,
			IsVerified: user.IsVerified,
			CreatedAt:  user.CreatedAt,
		},
		ExpiresAt: sess.ExpiresAt,
	}
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, sess, err := h.gw.SignUp(r.Context(), req.Email, req.Password, requestMetadata(r))
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	_ = h.transport.SetToken(w, sess.Token, h.sessionTTL)
	h.respondJSON(w, http.StatusCreated, newSessionResponse(user, sess))
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, sess, err := h.gw.SignIn(r.Context(), req.Email, req.Password, requestMetadata(r))
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	_ = h.transport.SetToken(w, sess.Token, h.sessionTTL)
	h.respondJSON(w, http.StatusOK, newSessionResponse(user, sess))
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	// Missing token still clears the client side; revoke is idempotent.
	if token, err := h.transport.GetToken(r); err == nil {
		if err := h.gw.SignOut(r.Context(), token); err != nil {
			h.respondAuthError(w, r, err)
			return
		}
	}

	_ = h.transport.ClearToken(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	token, err := h.transport.GetToken(r)
	if err != nil {
		h.respondError(w, r, http.StatusUnauthorized, "unauthenticated")
		return
	}

	user, sess, err := h.gw.ValidateSession(r.Context(), token)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newSessionResponse(user, sess))
}

func (h *Handler) handleProviderRedirect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	url, err := h.gw.AuthURL(r.Context(), provider)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) handleProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.respondError(w, r, http.StatusBadRequest, "missing code or state")
		return
	}

	user, sess, err := h.gw.SignInWithProvider(r.Context(), provider, code, state, requestMetadata(r))
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	_ = h.transport.SetToken(w, sess.Token, h.sessionTTL)
	h.respondJSON(w, http.StatusOK, newSessionResponse(user, sess))
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// The response is identical whether or not the email exists, so the
	// endpoint cannot be used for enumeration. Delivery happens out of band.
	if _, err := h.gw.ForgotPassword(r.Context(), req.Email); err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		h.respondAuthError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.gw.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.health(r.Context()); err != nil {
		h.respondError(w, r, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestMetadata(r *http.Request) session.Metadata {
	return session.Metadata{
		IPAddress: clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	}
}
