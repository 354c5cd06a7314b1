package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/token"
)

// subjectPasswordReset tags password reset token payloads.
const subjectPasswordReset = "password_reset"

// PasswordResetRequest contains the generated reset token and metadata. The
// token is delivered to the user out of band (email); the gateway only
// issues and verifies it.
type PasswordResetRequest struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

type passwordResetPayload struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Subject string `json:"sub"`
	Exp     int64  `json:"exp"`

	// Fingerprint binds the token to the password hash it was issued
	// against, so a token stops verifying the moment the password changes.
	// This makes reset tokens effectively one-shot without server-side state.
	Fingerprint string `json:"fp"`
}

// ForgotPassword generates a signed one-time reset token for the email.
// Callers should report success to the end user regardless of whether the
// email exists, to avoid enumeration.
func (g *Gateway) ForgotPassword(ctx context.Context, email string) (*PasswordResetRequest, error) {
	if g.tokenSecret == "" {
		return nil, ErrMissingTokenSecret
	}

	email = normalizeEmail(email)

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	fingerprint, err := g.passwordFingerprint(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(g.resetTokenTTL)
	payload := passwordResetPayload{
		ID:          user.ID.String(),
		Email:       email,
		Subject:     subjectPasswordReset,
		Exp:         expiresAt.Unix(),
		Fingerprint: fingerprint,
	}

	signed, err := token.Sign(payload, g.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	return &PasswordResetRequest{
		Email:     email,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// ResetPassword sets a new password using a valid reset token and revokes
// every session of the user, forcing re-authentication everywhere. A token
// is only honored against the password it was issued for: once the reset
// commits, replaying the same token fails.
func (g *Gateway) ResetPassword(ctx context.Context, resetToken, newPassword string) (*User, error) {
	if g.tokenSecret == "" {
		return nil, ErrMissingTokenSecret
	}

	payload, err := token.Parse[passwordResetPayload](resetToken, g.tokenSecret)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if payload.Subject != subjectPasswordReset {
		return nil, ErrTokenInvalid
	}
	if time.Now().Unix() > payload.Exp {
		return nil, ErrTokenExpired
	}

	userID, err := uuid.Parse(payload.ID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	fingerprint, err := g.passwordFingerprint(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload.Fingerprint != fingerprint {
		return nil, ErrTokenInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), g.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := g.users.StorePasswordHash(ctx, userID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	if err := g.sessions.DeleteByUserID(ctx, userID); err != nil {
		g.log.Error("failed to revoke sessions after password reset",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("auth"),
		)
	}

	return g.users.GetByID(ctx, userID)
}

// passwordFingerprint derives a short digest of the user's current password
// hash. Users without a stored password (OAuth-only) fingerprint the empty
// credential, which still changes once a password is set.
func (g *Gateway) passwordFingerprint(ctx context.Context, userID uuid.UUID) (string, error) {
	hash, err := g.users.GetPasswordHash(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}

	sum := sha256.Sum256(hash)
	return hex.EncodeToString(sum[:8]), nil
}
