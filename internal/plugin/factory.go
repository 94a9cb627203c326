package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wqmon/wqengine/internal/model"
)

// CollectorFactory builds a collector plugin from its configuration
type CollectorFactory func(cfg model.PluginConfig) (model.CollectorPlugin, error)

// OutputFactory builds an output plugin from its configuration
type OutputFactory func(cfg model.PluginConfig) (model.OutputPlugin, error)

// Factory is an explicit registry of plugin constructors keyed by the
// kind name each plugin declares. Registration happens at startup; there
// is no runtime scanning of source files.
type Factory struct {
	collectors map[string]CollectorFactory
	outputs    map[string]OutputFactory
	mu         sync.RWMutex
}

// NewFactory creates an empty plugin factory
func NewFactory() *Factory {
	return &Factory{
		collectors: make(map[string]CollectorFactory),
		outputs:    make(map[string]OutputFactory),
	}
}

// RegisterCollector registers a collector constructor under a kind name
func (f *Factory) RegisterCollector(kind string, factory CollectorFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectors[kind] = factory
}

// RegisterOutput registers an output constructor under a kind name
func (f *Factory) RegisterOutput(kind string, factory OutputFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[kind] = factory
}

// CreateCollector builds a collector plugin of the given kind
func (f *Factory) CreateCollector(kind string, cfg model.PluginConfig) (model.CollectorPlugin, error) {
	f.mu.RLock()
	factory, exists := f.collectors[kind]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown collector plugin kind: %s", kind)
	}
	return factory(cfg)
}

// CreateOutput builds an output plugin of the given kind
func (f *Factory) CreateOutput(kind string, cfg model.PluginConfig) (model.OutputPlugin, error) {
	f.mu.RLock()
	factory, exists := f.outputs[kind]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown output plugin kind: %s", kind)
	}
	return factory(cfg)
}

// CollectorKinds returns the registered collector kind names, sorted
func (f *Factory) CollectorKinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]string, 0, len(f.collectors))
	for kind := range f.collectors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// OutputKinds returns the registered output kind names, sorted
func (f *Factory) OutputKinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]string, 0, len(f.outputs))
	for kind := range f.outputs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
