// Package format wires the concrete format bindings into a registry the
// table service resolves by name.
package format

import (
	"fmt"
	"sort"
	"sync"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/format/avro"
	"filetable-gateway/internal/format/csv"
	"filetable-gateway/internal/format/json"
	"filetable-gateway/internal/format/parquet"
	"filetable-gateway/internal/format/text"
	"filetable-gateway/internal/table"
)

// Factory builds a format binding over a storage backend. Options carry
// format-specific settings (delimiter, header, sample size).
type Factory func(store discovery.Store, options map[string]string) table.FormatBinding

// Registry manages the known format bindings.
type Registry struct {
	factories map[string]Factory
	mutex     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry creates a registry with every built-in format registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(parquet.FormatName, func(store discovery.Store, options map[string]string) table.FormatBinding {
		return parquet.New(store, options)
	})
	r.Register(avro.FormatName, func(store discovery.Store, options map[string]string) table.FormatBinding {
		return avro.New(store, options)
	})
	r.Register(csv.FormatName, func(store discovery.Store, options map[string]string) table.FormatBinding {
		return csv.New(store, options)
	})
	r.Register(json.FormatName, func(store discovery.Store, options map[string]string) table.FormatBinding {
		return json.New(store, options)
	})
	r.Register(text.FormatName, func(store discovery.Store, options map[string]string) table.FormatBinding {
		return text.New()
	})
	return r
}

// Register adds or replaces a format factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.factories[name] = factory
}

// IsSupported reports whether a format is registered.
func (r *Registry) IsSupported(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Create builds the named format binding over the given store.
func (r *Registry) Create(name string, store discovery.Store, options map[string]string) (table.FormatBinding, error) {
	r.mutex.RLock()
	factory, ok := r.factories[name]
	r.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
	return factory(store, options), nil
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
