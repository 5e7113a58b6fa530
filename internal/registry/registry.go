package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/node"
)

// ErrUnknownKind is returned when a kind has not been registered.
var ErrUnknownKind = errors.New("unknown node kind")

// Module is the interface that all node modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Kind describes one node kind.
type Kind struct {
	Name    string
	Inputs  []string
	Outputs []string
	// Defaults are the parameters used when a pipeline does not override them.
	Defaults config.Config
	// New builds a kernel from the merged parameters.
	New func(params config.Config) (node.Kernel, error)
}

// Registry holds all registered node kinds for a single application instance.
type Registry struct {
	kinds map[string]*Kind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register adds a kind. Registering the same name twice is a programming
// error and panics.
func (r *Registry) Register(k *Kind) {
	if k == nil || k.Name == "" || k.New == nil {
		panic("registry: kind must have a name and a factory")
	}
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("node kind '%s' already registered", k.Name))
	}
	r.kinds[k.Name] = k
}

// Use registers every kind provided by the modules.
func (r *Registry) Use(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Kind returns the kind registered under name.
func (r *Registry) Kind(name string) (*Kind, error) {
	k, ok := r.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
