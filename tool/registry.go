package tool

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateTool reports a second registration under an already taken name.
	ErrDuplicateTool = errors.New("tool: duplicate tool name")
	// ErrEmptyName reports a tool whose Name() is empty.
	ErrEmptyName = errors.New("tool: empty tool name")
)

// Registry holds the tools available to an agent, keyed by unique name.
// Registration order is preserved so declaration lists sent to models are
// deterministic. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a Registry and registers the given tools. It fails on
// the first duplicate or unnamed tool.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool under its name. A name can only be taken once; a
// second registration is rejected rather than silently replacing the first.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
