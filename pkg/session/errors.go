package session

import "errors"

var (
	// ErrSessionNotFound indicates no session exists for the token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session's expiry has passed.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a nil session or empty token.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrInvalidTTL indicates a non-positive session lifetime.
	ErrInvalidTTL = errors.New("session.invalid_ttl")
)
