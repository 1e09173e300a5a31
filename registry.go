package filesystem

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/xirelogy/magpie-s3-filesystem/config"
)

var (
	ErrUnknownType   = errors.New("filesystem: unknown type")
	ErrDuplicateType = errors.New("filesystem: type already registered")
)

// Factory builds a FileSystem from its declarative configuration.
type Factory func(ctx context.Context, cfg *config.Config) (FileSystem, error)

// Registry maps a type discriminator onto the factory constructing it.
// Implementations register explicitly during process start.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// DefaultRegistry is the process-wide registry used by Open.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds factory under kind and refuses to replace an existing entry.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" || factory == nil {
		return fmt.Errorf("filesystem: invalid registration for '%s'", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, kind)
	}

	r.factories[kind] = factory
	return nil
}

// Unregister removes kind and reports whether it was registered.
func (r *Registry) Unregister(kind string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.factories[kind]
	delete(r.factories, kind)

	return exists
}

// Kinds returns the registered discriminators in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	return kinds
}

// Open validates cfg and constructs the file system named by cfg.Type.
func (r *Registry) Open(ctx context.Context, cfg *config.Config) (FileSystem, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	r.mu.RLock()
	factory, exists := r.factories[cfg.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownType, cfg.Type)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return factory(ctx, cfg)
}

// Open resolves cfg through the DefaultRegistry.
func Open(ctx context.Context, cfg *config.Config) (FileSystem, error) {
	return DefaultRegistry.Open(ctx, cfg)
}
