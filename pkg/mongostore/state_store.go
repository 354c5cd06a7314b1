package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

type stateDoc struct {
	State     string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// StateStore implements auth.StateStore on a MongoDB collection, letting an
// OAuth callback land on any instance behind a load balancer. A TTL index on
// expires_at prunes abandoned states.
type StateStore struct {
	coll *mongo.Collection
}

// NewStateStore creates an OAuth state store backed by the oauth_states
// collection.
func NewStateStore(db *mongo.Database) *StateStore {
	return &StateStore{coll: db.Collection(statesCollection)}
}

// Store records a state value with its expiry.
func (s *StateStore) Store(ctx context.Context, state string, expiresAt time.Time) error {
	if _, err := s.coll.InsertOne(ctx, stateDoc{State: state, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// Consume atomically removes the state. FindOneAndDelete guarantees a state
// is consumed exactly once even under concurrent callbacks; expiry is checked
// on the returned document since the TTL sweep is lazy.
func (s *StateStore) Consume(ctx context.Context, state string) error {
	var doc stateDoc
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": state}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.ErrStateNotFound
		}
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if time.Now().After(doc.ExpiresAt) {
		return auth.ErrStateNotFound
	}
	return nil
}

var _ auth.StateStore = (*StateStore)(nil)
