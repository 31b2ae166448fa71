package provider

import (
	"os"
	"path/filepath"
	"plugin"
	"reflect"
	"strings"
	"sync"

	"github.com/unbreakablehf/xnio/errors"
)

// TypeSymbol is the plugin variable whose static type declares the
// implementation type of a plugin-provided class. Its value is ignored.
//
//	var Provider *myProvider
//	func Create() provider.Provider { return &myProvider{} }
const TypeSymbol = "Provider"

// PluginLoader loads provider classes from Go plugin shared objects. It only
// answers names ending in ".so"; others are reported as not found. Relative
// names are resolved against Dir.
type PluginLoader struct {
	Dir string

	mu     sync.Mutex
	loaded map[string]*Class
}

// Load implements Loader.
func (l *PluginLoader) Load(name string) (*Class, error) {
	if !strings.HasSuffix(name, ".so") {
		return nil, errors.ProviderNotFound(name, nil)
	}
	path := name
	if !filepath.IsAbs(path) && l.Dir != "" {
		path = filepath.Join(l.Dir, path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.loaded[path]; ok {
		return c, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.ProviderNotFound(name, err)
	}
	// plugin.Open runs the plugin's package initializers.
	p, err := plugin.Open(path)
	if err != nil {
		return nil, errors.ProviderInitFailed(name, err)
	}

	c := &Class{name: name, symbols: make(map[string]any)}
	if sym, err := p.Lookup(TypeSymbol); err == nil {
		// Variables come back as pointers to the variable.
		c.impl = reflect.TypeOf(sym)
		if c.impl.Kind() == reflect.Pointer {
			c.impl = c.impl.Elem()
		}
	}
	if sym, err := p.Lookup(EntryPoint); err == nil {
		c.symbols[EntryPoint] = sym
	}

	if l.loaded == nil {
		l.loaded = make(map[string]*Class)
	}
	l.loaded[path] = c
	return c, nil
}
