package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

type accountDoc struct {
	UserID       string    `bson:"user_id"`
	Provider     string    `bson:"provider"`
	Subject      string    `bson:"subject"`
	AccessToken  string    `bson:"access_token,omitempty"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	ExpiresAt    time.Time `bson:"expires_at,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d accountDoc) toAccount() (*auth.Account, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid account user id %q: %w", d.UserID, err)
	}
	return &auth.Account{
		UserID:       userID,
		Provider:     d.Provider,
		Subject:      d.Subject,
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// AccountStore implements auth.AccountStore on a MongoDB collection. One
// document per (provider, subject) pair, enforced by a unique index.
type AccountStore struct {
	coll *mongo.Collection
}

// NewAccountStore creates an account store backed by the accounts collection.
func NewAccountStore(db *mongo.Database) *AccountStore {
	return &AccountStore{coll: db.Collection(accountsCollection)}
}

// Create links a provider identity to a user. A duplicate (provider, subject)
// pair surfaces as auth.ErrAccountExists.
func (s *AccountStore) Create(ctx context.Context, account *auth.Account) error {
	doc := accountDoc{
		UserID:       account.UserID.String(),
		Provider:     account.Provider,
		Subject:      account.Subject,
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		ExpiresAt:    account.ExpiresAt,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetBySubject retrieves the account linked to the provider subject.
func (s *AccountStore) GetBySubject(ctx context.Context, provider, subject string) (*auth.Account, error) {
	var doc accountDoc
	err := s.coll.FindOne(ctx, bson.M{"provider": provider, "subject": subject}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return doc.toAccount()
}

// UpdateTokens refreshes the stored provider tokens.
func (s *AccountStore) UpdateTokens(ctx context.Context, provider, subject, accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"provider": provider, "subject": subject},
		bson.M{"$set": bson.M{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"expires_at":    expiresAt,
			"updated_at":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update account tokens: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

var _ auth.AccountStore = (*AccountStore)(nil)
