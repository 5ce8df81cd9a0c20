// Package catalog is the central registry of runner modules.
//
// The catalog stores mappings between the string identifiers used in flock
// files (e.g. "httpprobe") and the compiled Go factories that build the
// corresponding runners. It is populated once during application startup;
// a name collision is a programmer error and panics.
package catalog

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/flockgo/internal/runnerspec"
)

// Module is the interface every runner module implements to be registered.
type Module interface {
	Register(c *Catalog)
}

// Catalog holds the registered runner factories for a single application
// instance.
type Catalog struct {
	runners map[string]runnerspec.Factory
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		runners: make(map[string]runnerspec.Factory),
	}
}

// RegisterRunner registers a factory under a runner name.
func (c *Catalog) RegisterRunner(name string, factory runnerspec.Factory) {
	if _, exists := c.runners[name]; exists {
		panic(fmt.Sprintf("runner with name '%s' already registered", name))
	}
	if factory == nil {
		panic(fmt.Sprintf("runner '%s' registered with nil factory", name))
	}
	slog.Debug("Registering runner.", "name", name)
	c.runners[name] = factory
}

// Runner returns the factory registered under name. It implements
// runnerspec.Catalog.
func (c *Catalog) Runner(name string) (runnerspec.Factory, bool) {
	f, ok := c.runners[name]
	return f, ok
}

// Names returns the sorted list of registered runner names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.runners))
	for name := range c.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
