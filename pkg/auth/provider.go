package auth

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ProviderAdapter is the polymorphic capability an external identity
// provider contributes: building an authorization URL and exchanging an
// authorization code for a normalized identity. The handshake itself is the
// provider's standard authorization-code flow.
type ProviderAdapter interface {
	// ProviderID returns the stable provider identifier ("github", ...).
	ProviderID() string

	// AuthURL builds the provider's authorization URL carrying the given
	// CSRF state token.
	AuthURL(state string) string

	// Exchange trades an authorization code for the provider's view of the
	// user's identity, including the raw provider tokens.
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)
}

// Registry holds the identity providers enabled at startup. Providers are an
// explicit list registered once during wiring, not a dynamically merged
// configuration.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ProviderAdapter
}

// NewRegistry creates a registry with the given adapters.
func NewRegistry(adapters ...ProviderAdapter) *Registry {
	r := &Registry{adapters: make(map[string]ProviderAdapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, replacing any previous adapter with the same id.
func (r *Registry) Register(a ProviderAdapter) {
	if a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ProviderID()] = a
}

// Get returns the adapter for the provider id.
func (r *Registry) Get(id string) (ProviderAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
	}
	return a, nil
}

// IDs returns the registered provider identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
