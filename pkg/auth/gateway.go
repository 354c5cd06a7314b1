package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/token"
)

// Config holds environment-driven gateway settings.
type Config struct {
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	StateTTL      time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	TokenSecret   string        `env:"AUTH_TOKEN_SECRET,required"`
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
}

// Gateway orchestrates sign-up, sign-in, session issuance, session
// validation, and sign-out. Every authentication attempt moves through
// verification and, on success, session issuance; lifecycle hooks fire
// around session creation and user mutation.
type Gateway struct {
	users    UserStore
	sessions session.Store
	accounts AccountStore
	states   StateStore
	registry *Registry

	log           *slog.Logger
	bcryptCost    int
	sessionTTL    time.Duration
	stateTTL      time.Duration
	tokenSecret   string
	resetTokenTTL time.Duration

	beforeSessionCreate []SessionHook
	beforeUserUpdate    []UserHook
	afterUserUpdate     []UserHook
}

// Option configures a Gateway during construction.
type Option func(*Gateway)

// WithLogger configures the gateway logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// WithBcryptCost configures the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(g *Gateway) {
		g.bcryptCost = cost
	}
}

// WithSessionTTL configures how long issued sessions live.
func WithSessionTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.sessionTTL = ttl
		}
	}
}

// WithStateTTL configures the lifetime of OAuth state tokens.
func WithStateTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.stateTTL = ttl
		}
	}
}

// WithProviders configures the external identity providers and the stores
// backing the OAuth flow.
func WithProviders(registry *Registry, accounts AccountStore, states StateStore) Option {
	return func(g *Gateway) {
		g.registry = registry
		g.accounts = accounts
		g.states = states
	}
}

// WithTokenSecret configures the secret for signed one-time tokens
// (password reset).
func WithTokenSecret(secret string) Option {
	return func(g *Gateway) {
		g.tokenSecret = secret
	}
}

// WithResetTokenTTL configures the password reset token lifetime.
func WithResetTokenTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.resetTokenTTL = ttl
		}
	}
}

// WithBeforeSessionCreate appends named hooks that run before a session is
// persisted. Hooks may mutate session metadata or veto creation.
func WithBeforeSessionCreate(hooks ...SessionHook) Option {
	return func(g *Gateway) {
		g.beforeSessionCreate = append(g.beforeSessionCreate, hooks...)
	}
}

// WithBeforeUserUpdate appends named hooks that run before a user mutation
// is persisted. Hooks may veto the mutation.
func WithBeforeUserUpdate(hooks ...UserHook) Option {
	return func(g *Gateway) {
		g.beforeUserUpdate = append(g.beforeUserUpdate, hooks...)
	}
}

// WithAfterUserUpdate appends named hooks that run after a user mutation is
// committed. Errors are logged, never rolled back: auditing is best-effort,
// not transactional.
func WithAfterUserUpdate(hooks ...UserHook) Option {
	return func(g *Gateway) {
		g.afterUserUpdate = append(g.afterUserUpdate, hooks...)
	}
}

// New creates an auth gateway backed by the given stores.
func New(users UserStore, sessions session.Store, opts ...Option) *Gateway {
	g := &Gateway{
		users:         users,
		sessions:      sessions,
		log:           logger.NewDiscard(),
		bcryptCost:    bcrypt.DefaultCost,
		sessionTTL:    30 * 24 * time.Hour,
		stateTTL:      10 * time.Minute,
		resetTokenTTL: 1 * time.Hour,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SignUp registers a new user with email and password and issues a session.
// The user store is the authority on email uniqueness; a duplicate surfaces
// as ErrEmailAlreadyExists without a prior existence check.
func (g *Gateway) SignUp(ctx context.Context, email, password string, meta session.Metadata) (*User, *session.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Email:      email,
		AuthMethod: MethodPassword,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, nil, ErrEmailAlreadyExists
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := g.users.StorePasswordHash(ctx, user.ID, hash); err != nil {
		// Compensating delete keeps the store consistent; a failure here
		// leaves a passwordless user that sign-in will reject.
		if deleteErr := g.users.Delete(ctx, user.ID); deleteErr != nil {
			g.log.Error("failed to cleanup user after password save failure",
				logger.UserID(user.ID.String()),
				logger.Error(deleteErr),
				logger.Component("auth"),
			)
		}
		return nil, nil, fmt.Errorf("failed to save password: %w", err)
	}

	sess, err := g.issueSession(ctx, user, meta)
	if err != nil {
		// The user record is committed; the caller can sign in again to
		// obtain a session.
		return nil, nil, err
	}

	g.log.Info("user signed up",
		logger.UserID(user.ID.String()),
		logger.Component("auth"),
	)
	return user, sess, nil
}

// SignIn verifies email and password and issues a session. Any failure —
// unknown email, missing credential, hash mismatch — is reported uniformly
// as ErrInvalidCredentials to prevent user enumeration.
func (g *Gateway) SignIn(ctx context.Context, email, password string, meta session.Metadata) (*User, *session.Session, error) {
	email = normalizeEmail(email)

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	hash, err := g.users.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	// bcrypt comparison is constant-time.
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := g.issueSession(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	g.log.Info("user signed in",
		logger.UserID(user.ID.String()),
		logger.Component("auth"),
	)
	return user, sess, nil
}

// AuthURL starts the OAuth flow for the named provider: a one-shot CSRF
// state token is stored and embedded in the returned authorization URL.
func (g *Gateway) AuthURL(ctx context.Context, providerID string) (string, error) {
	adapter, err := g.provider(providerID)
	if err != nil {
		return "", err
	}

	state, err := token.Generate(token.DefaultLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := g.states.Store(ctx, state, time.Now().Add(g.stateTTL)); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return adapter.AuthURL(state), nil
}

// SignInWithProvider completes the OAuth flow: the state is consumed, the
// code exchanged, and the returned subject mapped to an existing account or
// a freshly created user+account pair. Provider tokens are refreshed on the
// account record at every sign-in.
func (g *Gateway) SignInWithProvider(ctx context.Context, providerID, code, state string, meta session.Metadata) (*User, *session.Session, error) {
	adapter, err := g.provider(providerID)
	if err != nil {
		return nil, nil, err
	}

	// One-time consumption prevents both CSRF and replay.
	if err := g.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, nil, ErrInvalidState
		}
		return nil, nil, fmt.Errorf("failed to validate state: %w", err)
	}

	identity, err := adapter.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, ErrProviderExchange) || errors.Is(err, ErrNoProviderEmail) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, nil, fmt.Errorf("%w: incomplete identity", ErrProviderExchange)
	}
	identity.Email = normalizeEmail(identity.Email)

	user, err := g.resolveExternalIdentity(ctx, adapter.ProviderID(), identity)
	if err != nil {
		return nil, nil, err
	}

	sess, err := g.issueSession(ctx, user, meta)
	if err != nil {
		return nil, nil, err
	}

	g.log.Info("user signed in with provider",
		logger.UserID(user.ID.String()),
		logger.Provider(adapter.ProviderID()),
		logger.Component("auth"),
	)
	return user, sess, nil
}

// ValidateSession resolves a session token to its session and owning user.
// Unknown, revoked, and expired tokens are all reported as
// ErrUnauthenticated.
func (g *Gateway) ValidateSession(ctx context.Context, sessionToken string) (*User, *session.Session, error) {
	sess, err := g.sessions.GetByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	user, err := g.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("failed to get session user: %w", err)
	}

	return user, sess, nil
}

// SignOut revokes the session. Idempotent: revoking an unknown or
// already-revoked token is not an error.
func (g *Gateway) SignOut(ctx context.Context, sessionToken string) error {
	if err := g.sessions.Delete(ctx, sessionToken); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// UpdateUser applies a partial mutation to a user. Before-update hooks run
// first and may veto; after-update hooks fire once the mutation is
// committed, best-effort.
func (g *Gateway) UpdateUser(ctx context.Context, userID uuid.UUID, update UserUpdate) (*User, error) {
	current, err := g.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := runUserHooks(ctx, g.log, g.beforeUserUpdate, current, true); err != nil {
		return nil, err
	}

	updated, err := g.users.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	_ = runUserHooks(ctx, g.log, g.afterUserUpdate, updated, false)

	return updated, nil
}

func (g *Gateway) provider(id string) (ProviderAdapter, error) {
	if g.registry == nil || g.accounts == nil || g.states == nil {
		return nil, ErrUnknownProvider
	}
	return g.registry.Get(id)
}

// resolveExternalIdentity maps a provider subject to a local user, creating
// the user+account pair on first sign-in.
func (g *Gateway) resolveExternalIdentity(ctx context.Context, providerID string, identity ExternalIdentity) (*User, error) {
	account, err := g.accounts.GetBySubject(ctx, providerID, identity.Subject)
	if err == nil {
		if err := g.accounts.UpdateTokens(ctx, providerID, identity.Subject,
			identity.AccessToken, identity.RefreshToken, identity.Expiry); err != nil {
			g.log.Error("failed to refresh provider tokens",
				logger.UserID(account.UserID.String()),
				logger.Provider(providerID),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
		return g.users.GetByID(ctx, account.UserID)
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up provider account: %w", err)
	}

	// No linked account. Refuse to attach the provider identity to an
	// existing local user silently; that would allow account takeover via
	// a provider that vouches for the same email.
	if _, err := g.users.GetByEmail(ctx, identity.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Email:      identity.Email,
		Name:       identity.Name,
		AuthMethod: "oauth_" + providerID,
		IsVerified: identity.EmailVerified,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account = &Account{
		UserID:       user.ID,
		Provider:     providerID,
		Subject:      identity.Subject,
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		ExpiresAt:    identity.Expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := g.accounts.Create(ctx, account); err != nil {
		if deleteErr := g.users.Delete(ctx, user.ID); deleteErr != nil {
			g.log.Error("failed to cleanup user after account link failure",
				logger.UserID(user.ID.String()),
				logger.Provider(providerID),
				logger.Error(deleteErr),
				logger.Component("auth"),
			)
		}
		return nil, fmt.Errorf("failed to link provider account: %w", err)
	}

	return user, nil
}

// issueSession creates and persists a session for the user. Before-create
// hooks run against the unpersisted session and may mutate its metadata or
// veto issuance entirely.
func (g *Gateway) issueSession(ctx context.Context, user *User, meta session.Metadata) (*session.Session, error) {
	tok, err := token.Generate(token.DefaultLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	sess, err := session.New(tok, user.ID, meta, g.sessionTTL)
	if err != nil {
		return nil, err
	}

	if err := runSessionHooks(ctx, g.log, g.beforeSessionCreate, sess); err != nil {
		return nil, err
	}

	if err := g.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
