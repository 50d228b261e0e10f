package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh Backend instance.
type Factory func() Backend

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine available under name. Engines call this from
// their package init; importing the engine package activates it.
// Registering the same name twice panics: it is a programming error, not a
// runtime condition.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("backend: Register called twice for %q", name))
	}
	registry[name] = factory
}

// Get constructs the engine registered under name.
func Get(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q, registered: %v", ErrUnknownBackend, name, Registered())
	}
	return factory(), nil
}

// Registered lists registered engine names in sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
