package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// HookResult is the explicit continue/veto decision of a lifecycle hook.
type HookResult int

const (
	// Continue lets the operation proceed.
	Continue HookResult = iota
	// Veto rejects the operation before persistence.
	Veto
)

// SessionHook is a named hook invoked before a session is persisted. It may
// mutate the session (typically its metadata) or veto its creation.
type SessionHook struct {
	Name string
	Fn   func(ctx context.Context, s *session.Session) (HookResult, error)
}

// UserHook is a named hook invoked around user mutations. Before-hooks may
// veto the mutation; after-hooks run best-effort for auditing.
type UserHook struct {
	Name string
	Fn   func(ctx context.Context, u *User) (HookResult, error)
}

// runSessionHooks invokes the hooks in registration order. A Veto aborts
// with ErrHookVeto. A hook error without a veto is logged and does not block
// the operation.
func runSessionHooks(ctx context.Context, log *slog.Logger, hooks []SessionHook, s *session.Session) error {
	for _, h := range hooks {
		result, err := h.Fn(ctx, s)
		if result == Veto {
			return fmt.Errorf("%w: %s", ErrHookVeto, h.Name)
		}
		if err != nil {
			log.Error("session hook failed",
				logger.Hook(h.Name),
				logger.SessionID(s.ID.String()),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
	}
	return nil
}

// runUserHooks invokes the hooks in registration order. Veto handling is
// honored only when vetoable is true (before-hooks); after-hooks are
// best-effort audit points whose errors are logged, never propagated.
func runUserHooks(ctx context.Context, log *slog.Logger, hooks []UserHook, u *User, vetoable bool) error {
	for _, h := range hooks {
		result, err := h.Fn(ctx, u)
		if vetoable && result == Veto {
			return fmt.Errorf("%w: %s", ErrHookVeto, h.Name)
		}
		if err != nil {
			log.Error("user hook failed",
				logger.Hook(h.Name),
				logger.UserID(u.ID.String()),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
	}
	return nil
}
