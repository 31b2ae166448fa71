package provider

import (
	"github.com/unbreakablehf/xnio/errors"
)

// Loader resolves a class name to a Class.
//
// Load returns an error matching errors.ErrProviderNotFound when the name is
// unknown to the loader, and errors.ErrProviderInitFailed when the class
// exists but could not be initialized.
type Loader interface {
	Load(name string) (*Class, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (*Class, error)

// Load implements Loader.
func (f LoaderFunc) Load(name string) (*Class, error) { return f(name) }

// Loaders tries each loader in order. The first loader that knows the name
// wins; any failure other than "not found" stops the search.
type Loaders []Loader

// Load implements Loader.
func (ls Loaders) Load(name string) (*Class, error) {
	for _, l := range ls {
		if l == nil {
			continue
		}
		c, err := l.Load(name)
		if err == nil {
			return c, nil
		}
		if !errors.IsCode(err, errors.ErrCodeProviderNotFound) {
			return nil, err
		}
	}
	return nil, errors.ProviderNotFound(name, nil)
}
