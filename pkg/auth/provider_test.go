package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("get registered adapter", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(&stubAdapter{id: "github"}, &stubAdapter{id: "google"})

		a, err := r.Get("github")
		require.NoError(t, err)
		assert.Equal(t, "github", a.ProviderID())
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		_, err := r.Get("github")
		assert.ErrorIs(t, err, ErrUnknownProvider)
		assert.Contains(t, err.Error(), "github")
	})

	t.Run("register replaces same id", func(t *testing.T) {
		t.Parallel()

		first := &stubAdapter{id: "github", identity: ExternalIdentity{Subject: "old"}}
		second := &stubAdapter{id: "github", identity: ExternalIdentity{Subject: "new"}}

		r := NewRegistry(first)
		r.Register(second)

		a, err := r.Get("github")
		require.NoError(t, err)
		assert.Same(t, second, a)
	})

	t.Run("nil adapter is ignored", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(nil, &stubAdapter{id: "github"})
		assert.Equal(t, []string{"github"}, r.IDs())
	})

	t.Run("ids are sorted", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry(
			&stubAdapter{id: "twitter"},
			&stubAdapter{id: "github"},
			&stubAdapter{id: "google"},
		)
		assert.Equal(t, []string{"github", "google", "twitter"}, r.IDs())
	})
}
