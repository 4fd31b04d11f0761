package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
)

// BackendRegistry maps identifiers to live generation backends and
// tracks which one is current. Switching is a pure reassignment of
// "current backend" - no backend-specific branching lives here, and no
// backend-internal state carries over a switch. Only ConversationState,
// which is backend-agnostic, persists across one.
type BackendRegistry struct {
	mu       sync.RWMutex
	backends map[string]driven.GenerationBackend
	current  string
}

// NewBackendRegistry creates an empty registry.
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{
		backends: make(map[string]driven.GenerationBackend),
	}
}

// Register adds a backend under its own name. The first registered
// backend becomes current.
func (r *BackendRegistry) Register(backend driven.GenerationBackend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backend.Name()] = backend
	if r.current == "" {
		r.current = backend.Name()
	}
}

// Use switches the current backend by name.
func (r *BackendRegistry) Use(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownBackend, name)
	}
	r.current = name
	return nil
}

// Current returns the active backend.
func (r *BackendRegistry) Current() (driven.GenerationBackend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.backends[r.current]
	if !ok {
		return nil, fmt.Errorf("%w: no backend registered", domain.ErrUnknownBackend)
	}
	return backend, nil
}

// CurrentName returns the active backend's name, or empty when none
// is registered.
func (r *BackendRegistry) CurrentName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Names returns all registered backend names, sorted.
func (r *BackendRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered backend, returning the first error.
func (r *BackendRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, backend := range r.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
