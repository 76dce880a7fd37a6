// Package registry holds the canonical set of tasks the dispatcher can
// invoke. Each task carries a description, a closed JSON-schema parameter
// contract for the LLM's tool-calling API, and a handler.
//
// The registry is populated once at startup and read-only afterwards, so
// concurrent dispatch calls may read it without locking.
package registry

import "context"

// Handler executes a task with validated arguments. It returns a
// human-readable status string or fails with a *TaskError carrying a
// machine-readable cause.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Descriptor is one registered task: its invocation contract plus handler.
type Descriptor struct {
	Name        string
	Description string
	Parameters  Schema
	handler     Handler
}

// Registry maps task names to descriptors, preserving registration order so
// the schema list presented to the LLM is deterministic across runs.
type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Descriptor),
	}
}

// Register adds a task. Fails with *DuplicateTaskError if the name is taken.
func (r *Registry) Register(name, description string, params Schema, handler Handler) error {
	if _, exists := r.byName[name]; exists {
		return &DuplicateTaskError{Name: name}
	}

	r.byName[name] = &Descriptor{
		Name:        name,
		Description: description,
		Parameters:  params,
		handler:     handler,
	}
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers a task and panics on failure. Intended for the
// static startup registration where a duplicate is a programming error.
func (r *Registry) MustRegister(name, description string, params Schema, handler Handler) {
	if err := r.Register(name, description, params, handler); err != nil {
		panic(err)
	}
}

// Handler returns the handler for a task name.
// Fails with *UnknownTaskError if the task was never registered.
func (r *Registry) Handler(name string) (Handler, error) {
	desc, ok := r.byName[name]
	if !ok {
		return nil, &UnknownTaskError{Name: name}
	}
	return desc.handler, nil
}

// Descriptor returns the full descriptor for a task name.
// Fails with *UnknownTaskError if the task was never registered.
func (r *Registry) Descriptor(name string) (*Descriptor, error) {
	desc, ok := r.byName[name]
	if !ok {
		return nil, &UnknownTaskError{Name: name}
	}
	return desc, nil
}

// Descriptors returns all registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.byName[name])
	}
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.order)
}
