package artifacts

import (
	"sync"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
)

// Registry resolves a locator scheme to the store that serves it.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]model.ArtifactStore
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]model.ArtifactStore)}
}

func (r *Registry) Register(scheme string, store model.ArtifactStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme] = store
}

// Store returns a *model.ConfigurationError for unknown schemes.
func (r *Registry) Store(scheme string) (model.ArtifactStore, error) {
	if scheme == "" {
		scheme = model.DefaultScheme
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[scheme]
	if !ok {
		return nil, model.NewConfigurationErrorf("scheme", "%q is not supported", scheme)
	}
	return store, nil
}
