package modules

import (
	"io"
	"sort"

	"nodebbs/internal/nodes"
)

// Module defines the base interface for pluggable functionality.
type Module interface {
	// Name returns the unique identifier for the module.
	Name() string
}

// CommandHandler is an optional interface for modules that process user commands.
type CommandHandler interface {
	Module
	// HandleCommand reports whether cmd was consumed.
	HandleCommand(w io.Writer, node *nodes.Node, cmd string, args string) (bool, error)
}

// Registry holds all available modules.
type Registry struct {
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

func (r *Registry) Register(m Module) {
	r.modules[m.Name()] = m
}

func (r *Registry) Get(name string) Module {
	return r.modules[name]
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
