package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"time"

	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/errors"
	"github.com/unbreakablehf/xnio/logger"
)

// DefaultName is the class used when no provider is configured.
const DefaultName = "github.com/unbreakablehf/xnio/nio.Provider"

var (
	providerType = reflect.TypeFor[Provider]()
	errorType    = reflect.TypeFor[error]()
)

// Locator resolves and instantiates the configured provider.
//
// Every call to Create performs a fresh resolution; nothing is cached. Use
// a Manager when a single shared instance is wanted.
type Locator struct {
	// Loader resolves class names. Defaults to DefaultRegistry followed by
	// a PluginLoader.
	Loader Loader
	// Source supplies the provider name under config.ProviderKey. Defaults
	// to the process environment.
	Source config.Source
	// Default is the class name used when Source yields nothing.
	Default string

	log *logger.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithLoader sets the class loader.
func WithLoader(l Loader) LocatorOption {
	return func(loc *Locator) { loc.Loader = l }
}

// WithSource sets the configuration source for the provider name.
func WithSource(s config.Source) LocatorOption {
	return func(loc *Locator) { loc.Source = s }
}

// WithDefault sets the fallback class name.
func WithDefault(name string) LocatorOption {
	return func(loc *Locator) { loc.Default = name }
}

// WithLocatorLogger sets the logger used for resolution events.
func WithLocatorLogger(log *logger.Logger) LocatorOption {
	return func(loc *Locator) { loc.log = log }
}

// NewLocator creates a Locator with the given options applied over the
// defaults.
func NewLocator(opts ...LocatorOption) *Locator {
	loc := &Locator{
		Loader:  Loaders{DefaultRegistry, &PluginLoader{}},
		Source:  &config.EnvSource{},
		Default: DefaultName,
		log:     logger.Get("provider"),
	}
	for _, opt := range opts {
		opt(loc)
	}
	return loc
}

// Create resolves the configured provider with a default Locator.
func Create(ctx context.Context) (Provider, error) {
	return NewLocator().Create(ctx)
}

// Resolve returns the class name Create would load.
func (l *Locator) Resolve() string {
	def := l.Default
	if def == "" {
		def = DefaultName
	}
	return config.ReadProperty(l.Source, config.ProviderKey, def)
}

// Create loads the configured class, checks that it is a provider with a
// usable entry point and invokes it.
//
// Errors returned or panicked by the entry point are passed through
// unchanged. Every other failure matches errors.ErrProviderAcquisition.
func (l *Locator) Create(ctx context.Context) (Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := l.Resolve()
	log := l.logger().WithContext(ctx).WithFields(logger.Fields(logger.FieldProvider, name))
	start := time.Now()

	p, err := l.create(name)
	if err != nil {
		log.Warn("provider acquisition failed", logger.ErrorFields("create", err))
		return nil, err
	}
	log.Debug("provider created", logger.DurationFields("create", time.Since(start)))
	return p, nil
}

func (l *Locator) create(name string) (Provider, error) {
	loader := l.Loader
	if loader == nil {
		loader = DefaultRegistry
	}
	class, err := loader.Load(name)
	if err != nil {
		if stderrors.Is(err, errors.ErrProviderAcquisition) {
			return nil, err
		}
		return nil, errors.ProviderNotFound(name, err)
	}

	if class.Type() == nil || !class.Type().Implements(providerType) {
		return nil, errors.ProviderTypeMismatch(name, fmt.Errorf("%v does not implement %v", class.Type(), providerType))
	}

	fn, err := entryPoint(name, class)
	if err != nil {
		return nil, err
	}
	return invoke(name, fn)
}

func (l *Locator) logger() *logger.Logger {
	if l.log == nil {
		return logger.Get("provider")
	}
	return l.log
}

// entryPoint finds the Create symbol and checks its shape: a function with
// no parameters, which rules out method expressions, returning a Provider
// and optionally an error.
func entryPoint(name string, class *Class) (reflect.Value, error) {
	sym, ok := class.Lookup(EntryPoint)
	if !ok {
		return reflect.Value{}, errors.EntryPointMissing(name, "no exported "+EntryPoint+" function")
	}
	fn := reflect.ValueOf(sym)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return reflect.Value{}, errors.EntryPointMissing(name, EntryPoint+" is not a function")
	}
	t := fn.Type()
	if t.NumIn() != 0 {
		if t.In(0) == class.Type() {
			return reflect.Value{}, errors.EntryPointMissing(name, EntryPoint+" is an instance method")
		}
		return reflect.Value{}, errors.EntryPointMissing(name, EntryPoint+" takes arguments")
	}
	switch {
	case t.NumOut() == 1 && t.Out(0).Implements(providerType):
	case t.NumOut() == 2 && t.Out(0).Implements(providerType) && t.Out(1) == errorType:
	default:
		return reflect.Value{}, errors.EntryPointMissing(name, fmt.Sprintf("%s has signature %v", EntryPoint, t))
	}
	return fn, nil
}

func invoke(name string, fn reflect.Value) (p Provider, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		p = nil
		if e, ok := r.(error); ok {
			err = e
			return
		}
		err = errors.ProviderInitFailed(name, panicError(r))
	}()

	out := fn.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if isNil(out[0]) {
		return nil, errors.ProviderInitFailed(name, fmt.Errorf("%s returned nil", EntryPoint))
	}
	return out[0].Interface().(Provider), nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
