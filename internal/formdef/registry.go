package formdef

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"
)

//go:embed defs/*.cue
var demoFS embed.FS

// Registry holds loaded definitions by name. It is safe for concurrent
// reads and registrations.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition. Registering a name twice is an error.
func (r *Registry) Register(d *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[d.Name]; dup {
		return fmt.Errorf("formdef: duplicate definition %q", d.Name)
	}
	r.defs[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the named definition.
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns the definitions in registration order.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// LoadDir loads every definition in dir into a fresh registry.
func LoadDir(dir string) (*Registry, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	defs, err := l.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Demo returns a registry with the definitions shipped in this package.
// The embedded files are covered by tests, so loading cannot fail.
func Demo() *Registry {
	sub, err := fs.Sub(demoFS, "defs")
	if err != nil {
		panic(err)
	}
	l, err := NewLoader()
	if err != nil {
		panic(err)
	}
	defs, err := l.LoadFS(sub)
	if err != nil {
		panic(err)
	}
	r := NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}
