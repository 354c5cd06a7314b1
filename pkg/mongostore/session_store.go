package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authkit/pkg/session"
)

type sessionDoc struct {
	ID        string    `bson:"_id"`
	Token     string    `bson:"token"`
	UserID    string    `bson:"user_id"`
	IPAddress string    `bson:"ip_address,omitempty"`
	UserAgent string    `bson:"user_agent,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func newSessionDoc(s *session.Session) sessionDoc {
	return sessionDoc{
		ID:        s.ID.String(),
		Token:     s.Token,
		UserID:    s.UserID.String(),
		IPAddress: s.Metadata.IPAddress,
		UserAgent: s.Metadata.UserAgent,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func (d sessionDoc) toSession() (*session.Session, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid session user id %q: %w", d.UserID, err)
	}
	return &session.Session{
		ID:     id,
		Token:  d.Token,
		UserID: userID,
		Metadata: session.Metadata{
			IPAddress: d.IPAddress,
			UserAgent: d.UserAgent,
		},
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}, nil
}

// SessionStore implements session.Store on a MongoDB collection. A TTL index
// on expires_at prunes stale documents; expiry is still enforced at read time
// because the sweep runs on the server's schedule.
type SessionStore struct {
	coll *mongo.Collection
}

// NewSessionStore creates a session store backed by the sessions collection.
func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{coll: db.Collection(sessionsCollection)}
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.Token == "" {
		return session.ErrInvalidSession
	}
	if _, err := s.coll.InsertOne(ctx, newSessionDoc(sess)); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by token, checking expiry at read time.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"token": token}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	sess, err := doc.toSession()
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		_, _ = s.coll.DeleteOne(ctx, bson.M{"token": token})
		return nil, session.ErrSessionExpired
	}
	return sess, nil
}

// Delete removes a session by token. Deleting an absent token is a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. The TTL index does this
// on its own schedule; this is the on-demand variant.
func (s *SessionStore) DeleteExpired(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}}); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions owned by the user.
func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID.String()}); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

var _ session.Store = (*SessionStore)(nil)
