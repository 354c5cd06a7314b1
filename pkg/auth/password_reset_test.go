package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/session"
	"github.com/dmitrymomot/authkit/pkg/token"
)

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	meta := session.Metadata{}

	t.Run("full reset flow revokes existing sessions", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newTestGateway(t)
		user, sess, err := g.SignUp(ctx, "alice@example.com", "oldpassword", meta)
		require.NoError(t, err)

		req, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", req.Email)
		assert.NotEmpty(t, req.Token)
		assert.True(t, req.ExpiresAt.After(time.Now()))

		reset, err := g.ResetPassword(ctx, req.Token, "newpassword")
		require.NoError(t, err)
		assert.Equal(t, user.ID, reset.ID)

		// The old session is gone, the old password no longer works, the new
		// one does.
		_, _, err = g.ValidateSession(ctx, sess.Token)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		_, _, err = g.SignIn(ctx, "alice@example.com", "oldpassword", meta)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = g.SignIn(ctx, "alice@example.com", "newpassword", meta)
		assert.NoError(t, err)
	})

	t.Run("used token is rejected on replay", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newTestGateway(t)
		_, _, err := g.SignUp(ctx, "alice@example.com", "oldpassword", meta)
		require.NoError(t, err)

		req, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		_, err = g.ResetPassword(ctx, req.Token, "newpassword")
		require.NoError(t, err)

		// The token was bound to the old password hash; replaying it after
		// the reset committed must fail.
		_, err = g.ResetPassword(ctx, req.Token, "attacker-pass")
		assert.ErrorIs(t, err, ErrTokenInvalid)

		_, _, err = g.SignIn(ctx, "alice@example.com", "attacker-pass", meta)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = g.SignIn(ctx, "alice@example.com", "newpassword", meta)
		assert.NoError(t, err)
	})

	t.Run("token issued before a reset is invalidated by it", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newTestGateway(t)
		_, _, err := g.SignUp(ctx, "alice@example.com", "oldpassword", meta)
		require.NoError(t, err)

		stale, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		fresh, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		_, err = g.ResetPassword(ctx, fresh.Token, "newpassword")
		require.NoError(t, err)

		_, err = g.ResetPassword(ctx, stale.Token, "another-pass")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newTestGateway(t)
		_, err := g.ForgotPassword(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		t.Parallel()

		g, _, _ := newTestGateway(t)
		_, _, err := g.SignUp(ctx, "alice@example.com", "secret123", meta)
		require.NoError(t, err)

		req, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		_, err = g.ResetPassword(ctx, req.Token+"x", "newpassword")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		t.Parallel()

		issuer, _, _ := newTestGateway(t)
		_, _, err := issuer.SignUp(ctx, "alice@example.com", "secret123", meta)
		require.NoError(t, err)

		req, err := issuer.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		verifier := New(newFakeUserStore(), session.NewMemoryStore(0),
			WithBcryptCost(bcrypt.MinCost),
			WithTokenSecret("a-completely-different-secret-00"),
		)
		_, err = verifier.ResetPassword(ctx, req.Token, "newpassword")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing token secret refuses reset operations", func(t *testing.T) {
		t.Parallel()

		g := New(newFakeUserStore(), session.NewMemoryStore(0),
			WithBcryptCost(bcrypt.MinCost),
		)

		_, _, err := g.SignUp(ctx, "alice@example.com", "secret123", meta)
		require.NoError(t, err)

		_, err = g.ForgotPassword(ctx, "alice@example.com")
		assert.ErrorIs(t, err, ErrMissingTokenSecret)

		_, err = g.ResetPassword(ctx, "whatever", "newpassword")
		assert.ErrorIs(t, err, ErrMissingTokenSecret)
	})

	t.Run("token forged with an empty secret is rejected", func(t *testing.T) {
		t.Parallel()

		g := New(newFakeUserStore(), session.NewMemoryStore(0),
			WithBcryptCost(bcrypt.MinCost),
		)

		victim, _, err := g.SignUp(ctx, "alice@example.com", "secret123", meta)
		require.NoError(t, err)

		// An attacker who knows the victim's ID and email signs a payload
		// with the zero-value secret. The gateway must not honor it.
		forged, err := token.Sign(passwordResetPayload{
			ID:      victim.ID.String(),
			Email:   victim.Email,
			Subject: subjectPasswordReset,
			Exp:     time.Now().Add(time.Hour).Unix(),
		}, "")
		require.NoError(t, err)

		_, err = g.ResetPassword(ctx, forged, "attacker-pass")
		assert.ErrorIs(t, err, ErrMissingTokenSecret)

		_, _, err = g.SignIn(ctx, "alice@example.com", "attacker-pass", meta)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = g.SignIn(ctx, "alice@example.com", "secret123", meta)
		assert.NoError(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		t.Parallel()

		users := newFakeUserStore()
		g := New(users, session.NewMemoryStore(0),
			WithBcryptCost(bcrypt.MinCost),
			WithTokenSecret("test-secret-32-chars-long-123456"),
			WithResetTokenTTL(time.Nanosecond),
		)

		_, _, err := g.SignUp(ctx, "alice@example.com", "secret123", meta)
		require.NoError(t, err)

		req, err := g.ForgotPassword(ctx, "alice@example.com")
		require.NoError(t, err)

		time.Sleep(1100 * time.Millisecond) // expiry has second resolution

		_, err = g.ResetPassword(ctx, req.Token, "newpassword")
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}
