package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// Projections are registered once at startup and looked up by Go type
// identity. Nothing here walks struct fields.
var registry = struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Projection
}{
	byType: make(map[reflect.Type]*Projection, 8),
}

// Register binds p to the entity type T, replacing any earlier binding.
func Register[T any](p *Projection) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byType[reflect.TypeFor[T]()] = p
}

// Lookup returns the projection registered for T.
func Lookup[T any]() (*Projection, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	p, ok := registry.byType[reflect.TypeFor[T]()]
	return p, ok
}

// MustLookup is Lookup that panics on a missing registration, which is a
// wiring bug rather than bad input.
func MustLookup[T any]() *Projection {
	p, ok := Lookup[T]()
	if !ok {
		panic(fmt.Sprintf("schema: no projection registered for %s", reflect.TypeFor[T]()))
	}
	return p
}
