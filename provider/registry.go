package provider

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/unbreakablehf/xnio/errors"
)

// EntryPoint is the exported symbol a provider class must define: a
// zero-argument function returning a Provider, optionally with an error.
const EntryPoint = "Create"

// Class describes a loadable provider implementation: its name, the
// concrete type it declares, its exported symbols and an optional
// initializer that runs once the first time the class is loaded.
type Class struct {
	name    string
	impl    reflect.Type
	symbols map[string]any
	init    func() error

	once    sync.Once
	initErr error
}

// ClassOption configures a Class.
type ClassOption func(*Class)

// WithSymbol exports value under name.
func WithSymbol(name string, value any) ClassOption {
	return func(c *Class) { c.symbols[name] = value }
}

// WithEntryPoint exports fn as the class's Create symbol.
func WithEntryPoint(fn any) ClassOption {
	return WithSymbol(EntryPoint, fn)
}

// WithInitializer sets a function that runs the first time the class is
// loaded. A failure or panic is remembered and reported on every later load.
func WithInitializer(fn func() error) ClassOption {
	return func(c *Class) { c.init = fn }
}

// Define declares a class named name whose implementation type is T.
//
//	provider.Define[*myProvider]("example.com/my.Provider",
//	    provider.WithEntryPoint(func() provider.Provider { return &myProvider{} }))
func Define[T any](name string, opts ...ClassOption) *Class {
	c := &Class{
		name:    name,
		impl:    reflect.TypeFor[T](),
		symbols: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the fully qualified class name.
func (c *Class) Name() string { return c.name }

// Type returns the declared implementation type.
func (c *Class) Type() reflect.Type { return c.impl }

// Lookup returns the symbol exported under exactly name.
func (c *Class) Lookup(name string) (any, bool) {
	v, ok := c.symbols[name]
	return v, ok
}

// Initialize runs the class initializer once and returns its outcome.
func (c *Class) Initialize() error {
	c.once.Do(func() {
		if c.init == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				c.initErr = panicError(r)
			}
		}()
		c.initErr = c.init()
	})
	return c.initErr
}

// Registry is an in-process class loader keyed by class name.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds c, replacing any class already registered under its name.
func (r *Registry) Register(c *Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.name] = c
}

// Unregister removes the class registered under name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, name)
}

// Load returns the named class after running its initializer.
func (r *Registry) Load(name string) (*Class, error) {
	r.mu.RLock()
	c, ok := r.classes[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.ProviderNotFound(name, nil)
	}
	if err := c.Initialize(); err != nil {
		return nil, errors.ProviderInitFailed(name, err)
	}
	return c, nil
}

// List returns the sorted names of all registered classes.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the classes registered by imported provider packages.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry. Provider packages call it from init.
func Register(c *Class) { DefaultRegistry.Register(c) }

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
