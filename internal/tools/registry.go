package tools

import (
	"fmt"
	"strings"
	"sync"
)

// Registry tool registry, ordered by registration
type Registry struct {
	tools []Tool
	index map[string]int
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		index: make(map[string]int),
	}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register registers a tool
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolExists, name)
	}

	r.index[name] = len(r.tools)
	r.tools = append(r.tools, tool)
	return nil
}

// Get gets a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[name]
	if !exists {
		return nil, false
	}
	return r.tools[i], true
}

// Find gets a tool by name or returns a *NotFoundError
func (r *Registry) Find(name string) (Tool, error) {
	if tool, ok := r.Get(name); ok {
		return tool, nil
	}
	return nil, &NotFoundError{Name: name, Available: r.Names()}
}

// List lists all tools in registration order
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, len(r.tools))
	copy(tools, r.tools)
	return tools
}

// Names returns tool names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.tools))
	for i, tool := range r.tools {
		names[i] = tool.Name()
	}
	return names
}

// Describe renders one "name: description" line per tool
func (r *Registry) Describe() string {
	return RenderDescriptions(r.List())
}

// FindTool returns the tool in tools whose name equals name
func FindTool(tools []Tool, name string) (Tool, error) {
	available := make([]string, 0, len(tools))
	for _, tool := range tools {
		if tool.Name() == name {
			return tool, nil
		}
		available = append(available, tool.Name())
	}
	return nil, &NotFoundError{Name: name, Available: available}
}

// RenderDescriptions renders tools as prompt text
func RenderDescriptions(tools []Tool) string {
	lines := make([]string, len(tools))
	for i, tool := range tools {
		lines[i] = tool.Name() + ": " + tool.Description()
	}
	return strings.Join(lines, "\n")
}

// NewDefaultRegistry creates and registers the built-in tools
func NewDefaultRegistry(generator Completer, generateTemplate string) *Registry {
	// Built-in names are distinct, so registration cannot fail
	registry, _ := NewRegistry(
		NewTextLengthTool(),
		NewGenerateTextTool(generator, generateTemplate),
	)
	return registry
}
