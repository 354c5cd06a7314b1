package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authkit/pkg/auth"
)

// userDoc is the MongoDB shape of auth.User. The password hash lives on the
// same document but is never copied onto the domain type.
type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name,omitempty"`
	AuthMethod   string    `bson:"auth_method"`
	Roles        []string  `bson:"roles,omitempty"`
	IsVerified   bool      `bson:"is_verified"`
	PasswordHash []byte    `bson:"password_hash,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newUserDoc(u *auth.User) userDoc {
	return userDoc{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		AuthMethod: u.AuthMethod,
		Roles:      u.Roles,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d userDoc) toUser() (*auth.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return &auth.User{
		ID:         id,
		Email:      d.Email,
		Name:       d.Name,
		AuthMethod: d.AuthMethod,
		Roles:      d.Roles,
		IsVerified: d.IsVerified,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

// UserStore implements auth.UserStore on a MongoDB collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store backed by the users collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// Create inserts a new user. A unique index violation on email surfaces as
// auth.ErrEmailAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	if _, err := s.coll.InsertOne(ctx, newUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toUser()
}

// Update applies the non-nil fields of the update and returns the updated
// user.
func (s *UserStore) Update(ctx context.Context, id uuid.UUID, update auth.UserUpdate) (*auth.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Roles != nil {
		set["roles"] = *update.Roles
	}
	if update.IsVerified != nil {
		set["is_verified"] = *update.IsVerified
	}

	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return doc.toUser()
}

// Delete removes a user. Deleting an absent user is a no-op.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// StorePasswordHash sets the password hash on the user document.
func (s *UserStore) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// GetPasswordHash returns the stored password hash. A user without one (OAuth
// only) is reported as auth.ErrUserNotFound so sign-in fails uniformly.
func (s *UserStore) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx,
		bson.M{"_id": userID.String()},
		options.FindOne().SetProjection(bson.M{"password_hash": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get password hash: %w", err)
	}
	if len(doc.PasswordHash) == 0 {
		return nil, auth.ErrUserNotFound
	}
	return doc.PasswordHash, nil
}

var _ auth.UserStore = (*UserStore)(nil)
