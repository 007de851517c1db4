package gateway

import (
	"fmt"
	"sync"

	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
)

// Target pairs a model with the adapter that serves it.
type Target struct {
	Descriptor api.ModelDescriptor
	Provider   llm.Provider
}

// Registry holds the model descriptors in configuration order with O(1)
// lookup by name. It is filled at startup and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	targets map[string]Target
}

func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

func (r *Registry) Add(d api.ModelDescriptor, p llm.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[d.Name]; exists {
		return fmt.Errorf("model %q already registered", d.Name)
	}
	r.targets[d.Name] = Target{Descriptor: d, Provider: p}
	r.order = append(r.order, d.Name)
	return nil
}

func (r *Registry) Lookup(name string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[name]
	return t, ok
}

// Descriptors returns every registered model in configuration order.
func (r *Registry) Descriptors() []api.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]api.ModelDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.targets[name].Descriptor)
	}
	return out
}

// Enabled returns the names of enabled models in configuration order.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, name := range r.order {
		if r.targets[name].Descriptor.Enabled {
			names = append(names, name)
		}
	}
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
