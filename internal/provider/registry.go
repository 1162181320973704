package provider

import (
	"sync"

	"ckryptbit/internal/domain/models"
)

// Registry holds the live adapter for each provider. Reconfiguring an
// endpoint at runtime swaps the adapter in place; readers always dispatch
// against the current one.
type Registry struct {
	mu       sync.RWMutex
	adapters map[models.ProviderID]Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[models.ProviderID]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.ID()] = a
	}
	return r
}

// Get returns the adapter for id, or false when none is installed.
func (r *Registry) Get(id models.ProviderID) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

// Set installs or replaces the adapter for its provider id.
func (r *Registry) Set(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}
