package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Invocation is the selection a tool operates on.
type Invocation struct {
	// Values holds the current values of the selection. Tools read it and call Put to change it.
	Values [][]any
	// Filter is the action's optional regex predicate.
	Filter domain.Matcher
	// Clipboard is the session clipboard, shared across batches.
	Clipboard *domain.Clipboard

	changes []Change
}

// Change is one cell a tool decided to overwrite, at a 0-based offset in the selection.
type Change struct {
	Row, Col int
	Value    any
}

// Put records a new value at offset (i, j). Writing the value a cell already holds is ignored.
func (inv *Invocation) Put(i, j int, v any) {
	if reflect.DeepEqual(inv.Values[i][j], v) {
		return
	}
	inv.Values[i][j] = v
	inv.changes = append(inv.changes, Change{Row: i, Col: j, Value: v})
}

// Changes returns the recorded writes in the order they were made.
func (inv *Invocation) Changes() []Change {
	return inv.changes
}

// ToolFunction defines the signature for a tool implementation.
type ToolFunction func(ctx context.Context, inv *Invocation) error

// Registry manages the available tools. Names are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolFunction
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ToolFunction),
	}
}

// Default returns a registry holding copy, paste, pasteasvalues and delete.
func Default() *Registry {
	r := NewRegistry()
	r.Register("copy", Copy)
	r.Register("paste", Paste)
	r.Register("pasteasvalues", Paste)
	r.Register("delete", Delete)
	return r
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ToolFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[normalize(name)] = fn
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute looks up a tool by name and executes it.
// Returns an error wrapping domain.ErrUnknownTool if the tool is not found.
func (r *Registry) Execute(ctx context.Context, name string, inv *Invocation) error {
	r.mu.RLock()
	fn, ok := r.tools[normalize(name)]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	return fn(ctx, inv)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
