package auth

import "errors"

// General authentication errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// OAuth-specific errors.
var (
	ErrUnknownProvider  = errors.New("unknown identity provider")
	ErrProviderExchange = errors.New("provider token exchange failed")
	ErrNoProviderEmail  = errors.New("no email from provider")
	ErrInvalidState     = errors.New("invalid oauth state")
	ErrStateNotFound    = errors.New("oauth state not found or expired")
	ErrAccountExists    = errors.New("provider account already linked")
	ErrAccountNotFound  = errors.New("provider account not found")
)

// Hook errors.
var (
	// ErrHookVeto is returned when a before-hook rejects the operation prior
	// to persistence.
	ErrHookVeto = errors.New("operation vetoed by hook")
)

// Password reset token errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingTokenSecret is returned when signed-token operations are
	// attempted without a configured secret. An empty HMAC key would make
	// reset tokens forgeable, so the gateway refuses instead.
	ErrMissingTokenSecret = errors.New("token secret not configured")
)
