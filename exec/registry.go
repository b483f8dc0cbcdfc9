//go:build unix

package exec

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Preset is a named command line with its input and capture settings, so
// callers can run a command by name.
type Preset struct {
	Name        string
	Description string
	CommandLine string
	Input       []byte // nil means no stdin pipe
	Capture     Capture
}

// Run executes the preset with e.
func (p Preset) Run(ctx context.Context, e *Executor) (*Result, error) {
	return e.Execute(ctx, p.CommandLine, p.Input, p.Capture)
}

// Registry holds presets by name.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		presets: make(map[string]Preset),
	}
}

// Register adds a preset. Names must be unique and the command line must
// not be empty.
func (r *Registry) Register(p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("cannot register preset with empty name")
	}
	if p.CommandLine == "" {
		return fmt.Errorf("preset '%s' has an empty command", p.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.presets[p.Name]; exists {
		return fmt.Errorf("preset '%s' is already registered", p.Name)
	}

	r.presets[p.Name] = p
	return nil
}

// Get retrieves a preset by name
func (r *Registry) Get(name string) (Preset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.presets[name]
	return p, ok
}

// List returns all preset names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Size returns the number of presets
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.presets)
}

// Execute runs the named preset with e
func (r *Registry) Execute(ctx context.Context, name string, e *Executor) (*Result, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("preset '%s' not found in registry", name)
	}
	return p.Run(ctx, e)
}
