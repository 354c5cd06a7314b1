package session

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByToken retrieves a session by its token. Returns
	// ErrSessionNotFound for unknown or revoked tokens and
	// ErrSessionExpired when the stored expiry has passed.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// Delete revokes a session by token. Idempotent: deleting an absent or
	// already-revoked token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes expired sessions. Stores whose backend expires
	// records natively may implement this as a no-op.
	DeleteExpired(ctx context.Context) error

	// DeleteByUserID revokes every session owned by the user.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
