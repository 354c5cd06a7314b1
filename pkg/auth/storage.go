package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore persists identity records and password credentials. The store is
// the authority on email uniqueness: Create must fail with
// ErrEmailAlreadyExists on a duplicate, and callers rely on that instead of
// pre-checking.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error)

	// Delete exists only as a compensating action when a multi-step
	// creation fails part-way. There is no user-facing deletion.
	Delete(ctx context.Context, id uuid.UUID) error

	StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// AccountStore persists links between local users and external provider
// subjects. Create must fail with ErrAccountExists when the
// (provider, subject) pair is already linked.
type AccountStore interface {
	Create(ctx context.Context, account *Account) error
	GetBySubject(ctx context.Context, provider, subject string) (*Account, error)
	UpdateTokens(ctx context.Context, provider, subject, accessToken, refreshToken string, expiresAt time.Time) error
}

// StateStore persists one-shot OAuth state values for CSRF protection.
type StateStore interface {
	Store(ctx context.Context, state string, expiresAt time.Time) error

	// Consume atomically checks that the state exists and removes it.
	// Returns ErrStateNotFound if it is absent, expired, or already
	// consumed. Atomicity prevents races between concurrent callbacks.
	Consume(ctx context.Context, state string) error
}
