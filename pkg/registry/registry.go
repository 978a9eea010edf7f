// Package registry manages the action handlers a host exposes to the router.
package registry

import (
	"sync"

	"github.com/aretw0/espalier/pkg/ports"
)

// Registry maps exact action names to handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ports.ActionHandler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		handlers: make(map[string]ports.ActionHandler),
	}
}

// Register adds a handler under an exact action name.
// If a handler with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ports.ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (ports.ActionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names lists registered action names (unordered).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
