package auth

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Authentication method identifiers recorded on the user at creation.
const (
	MethodPassword     = "password"
	MethodOAuthGithub  = "oauth_github"
	MethodOAuthGoogle  = "oauth_google"
	MethodOAuthTwitter = "oauth_twitter"
)

// RoleAdmin marks a user with administrative privileges.
const RoleAdmin = "admin"

// User represents an identity record. Users are never deleted by this
// subsystem; the store-level Delete exists only as a compensating action
// during multi-step creation.
type User struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	Email      string    `json:"email" bson:"email"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	AuthMethod string    `json:"auth_method" bson:"auth_method"`
	Roles      []string  `json:"roles,omitempty" bson:"roles,omitempty"`
	IsVerified bool      `json:"is_verified" bson:"is_verified"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserUpdate describes a partial user mutation. Nil fields are left
// untouched.
type UserUpdate struct {
	Name       *string
	Roles      *[]string
	IsVerified *bool
}

// Account binds a local user to an external identity provider's subject.
// The (Provider, Subject) pair is unique across all accounts.
type Account struct {
	UserID       uuid.UUID `json:"user_id" bson:"user_id"`
	Provider     string    `json:"provider" bson:"provider"`
	Subject      string    `json:"subject" bson:"subject"`
	AccessToken  string    `json:"-" bson:"access_token,omitempty"`
	RefreshToken string    `json:"-" bson:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ExternalIdentity is the normalized result of a provider's token exchange.
type ExternalIdentity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
	AccessToken   string
	RefreshToken  string
	Expiry        time.Time
}
