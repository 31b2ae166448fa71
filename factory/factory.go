package factory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/unbreakablehf/xnio/errors"
)

// Key is the untyped view of an Option used for discovery and for
// configuration-driven SetOption calls.
type Key interface {
	Name() string
	accepts(v any) bool
}

// Option names a typed factory option.
type Option[V any] struct {
	name string
}

// NewOption declares an option named name carrying values of type V.
func NewOption[V any](name string) Option[V] {
	return Option[V]{name: name}
}

// Name returns the option name.
func (o Option[V]) Name() string { return o.name }

func (o Option[V]) accepts(v any) bool {
	_, ok := v.(V)
	return ok
}

// Options is the bag of applied option values handed to a BuildFunc.
type Options map[string]any

// Get returns the value set for o, if any.
func Get[V any](opts Options, o Option[V]) (V, bool) {
	v, ok := opts[o.name].(V)
	return v, ok
}

// GetOr returns the value set for o or def.
func GetOr[V any](opts Options, o Option[V], def V) V {
	if v, ok := Get(opts, o); ok {
		return v
	}
	return def
}

// BuildFunc materializes the factory product from the applied options.
type BuildFunc[T any] func(ctx context.Context, opts Options) (T, error)

// ConfigurableFactory defers construction of a T until Create is called.
// Options may be set only before a successful Create; nothing is bound,
// dialled or allocated before then.
type ConfigurableFactory[T any] struct {
	mu        sync.Mutex
	supported map[string]Key
	values    Options
	build     BuildFunc[T]
	created   bool
}

// New returns a factory that accepts the given option keys.
func New[T any](build BuildFunc[T], supported ...Key) *ConfigurableFactory[T] {
	keys := make(map[string]Key, len(supported))
	for _, k := range supported {
		keys[k.Name()] = k
	}
	return &ConfigurableFactory[T]{
		supported: keys,
		values:    make(Options),
		build:     build,
	}
}

// Options returns the sorted names of the options this factory accepts.
func (f *ConfigurableFactory[T]) Options() []string {
	names := make([]string, 0, len(f.supported))
	for name := range f.supported {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetOption sets an option by name. The value must have the option's type.
func (f *ConfigurableFactory[T]) SetOption(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created {
		return errors.FactoryAlreadyCreated()
	}
	key, ok := f.supported[name]
	if !ok {
		return errors.UnknownOption(name)
	}
	if !key.accepts(value) {
		return errors.InvalidInput(name, fmt.Sprintf("unexpected value type %T", value))
	}
	f.values[name] = value
	return nil
}

// Set sets a typed option on f.
func Set[T, V any](f *ConfigurableFactory[T], o Option[V], value V) error {
	return f.SetOption(o.name, value)
}

// Created reports whether Create has already succeeded.
func (f *ConfigurableFactory[T]) Created() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// Create materializes the product. It succeeds at most once; a failed
// attempt leaves the factory configurable so the caller may retry.
func (f *ConfigurableFactory[T]) Create(ctx context.Context) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero T
	if f.created {
		return zero, errors.FactoryAlreadyCreated()
	}
	snapshot := make(Options, len(f.values))
	for k, v := range f.values {
		snapshot[k] = v
	}
	out, err := f.build(ctx, snapshot)
	if err != nil {
		return zero, err
	}
	f.created = true
	return out, nil
}
