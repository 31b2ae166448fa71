package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// ProviderKey names the configuration key that selects the provider
// implementation. Its environment form is XNIO_PROVIDER.
const ProviderKey = "xnio.provider"

// Source reads a single configuration key.
type Source interface {
	Lookup(key string) (string, bool)
}

// EnvSource reads keys from the process environment, mapping
// "xnio.provider" to XNIO_PROVIDER.
type EnvSource struct {
	once sync.Once
	v    *viper.Viper
}

// Lookup implements Source.
func (s *EnvSource) Lookup(key string) (string, bool) {
	s.once.Do(func() {
		s.v = viper.New()
		s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		s.v.AutomaticEnv()
	})
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

// ViperSource reads keys from an already loaded viper instance, typically
// the one returned by NewViper.
type ViperSource struct {
	V *viper.Viper
}

// Lookup implements Source.
func (s ViperSource) Lookup(key string) (string, bool) {
	if s.V == nil || !s.V.IsSet(key) {
		return "", false
	}
	return s.V.GetString(key), true
}

// MapSource is a fixed set of keys, mostly for tests.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ReadProperty reads key from src and falls back to def when the key is
// unset, empty, or the source fails in any way. It never panics, so callers
// only need the right to call it, not access to whatever backs src.
func ReadProperty(src Source, key, def string) (value string) {
	value = def
	if src == nil {
		return def
	}
	defer func() {
		if r := recover(); r != nil {
			value = def
		}
	}()
	if v, ok := src.Lookup(key); ok && strings.TrimSpace(v) != "" {
		value = strings.TrimSpace(v)
	}
	return value
}
