package session

import (
	"time"

	"github.com/google/uuid"
)

// Metadata carries optional client context captured at session creation.
type Metadata struct {
	IPAddress string `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
}

// Session is the proof of an authenticated user for a bounded time window.
// The token is opaque and unguessable; everything else is bookkeeping.
type Session struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Token     string    `json:"token" bson:"token"`
	UserID    uuid.UUID `json:"user_id" bson:"user_id"`
	Metadata  Metadata  `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// New creates a session owned by userID, expiring after ttl.
// The ttl must be positive so that ExpiresAt is strictly after CreatedAt.
func New(token string, userID uuid.UUID, meta Metadata, ttl time.Duration) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		Metadata:  meta,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsExpired reports whether the session's expiry has passed. Expiry is always
// computed at read time; stores never rely on a background sweep for
// correctness.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
