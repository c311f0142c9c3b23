package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownGenerator = errors.New("unknown generator")

// GeneratorFunc builds a model for ctx, reading and writing the shared
// scene terrain.
type GeneratorFunc func(ctx Context, s *Scene) Model

// Registry maps generator ids to their functions.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]GeneratorFunc
}

func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]GeneratorFunc)}
}

// Register adds a generator. Registering the same id twice panics.
func (r *Registry) Register(id string, fn GeneratorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generators[id]; exists {
		panic(fmt.Sprintf("generator %q registered twice", id))
	}
	r.generators[id] = fn
}

func (r *Registry) Lookup(id string) (GeneratorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.generators[id]
	return fn, ok
}

// Generate runs the generator named by ctx. An unregistered id panics with an
// error wrapping ErrUnknownGenerator.
func (r *Registry) Generate(ctx Context, s *Scene) Model {
	fn, ok := r.Lookup(ctx.Generator)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownGenerator, ctx.Generator))
	}
	m := fn(ctx, s)
	if m == nil {
		return Empty{}
	}
	return m
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.generators))
	for id := range r.generators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
