package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("consume succeeds once", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStateStore()
		require.NoError(t, s.Store(ctx, "abc", time.Now().Add(time.Minute)))

		require.NoError(t, s.Consume(ctx, "abc"))
		assert.ErrorIs(t, s.Consume(ctx, "abc"), ErrStateNotFound)
	})

	t.Run("unknown state", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStateStore()
		assert.ErrorIs(t, s.Consume(ctx, "missing"), ErrStateNotFound)
	})

	t.Run("expired state is rejected and removed", func(t *testing.T) {
		t.Parallel()

		s := NewMemoryStateStore()
		require.NoError(t, s.Store(ctx, "stale", time.Now().Add(-time.Second)))

		assert.ErrorIs(t, s.Consume(ctx, "stale"), ErrStateNotFound)
		assert.ErrorIs(t, s.Consume(ctx, "stale"), ErrStateNotFound)
	})
}
