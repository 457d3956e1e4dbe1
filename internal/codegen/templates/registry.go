// Package templates holds the explicit constructor templates that replace
// the generic reconstruction call for specific providers.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Alia5/studiogen/internal/component"
)

// Context is what a template receives when it renders the root component.
type Context struct {
	// Var is the variable the template must assign to.
	Var string
	// Ident is the name under which the provider's symbol is imported.
	Ident    string
	Provider component.TypeReference
	Spec     *component.Spec
}

// Template renders the construction code for one component.
type Template func(ctx Context) (string, error)

// ErrFrozen is returned when registering into a frozen registry.
var ErrFrozen = errors.New("template registry is frozen")

// Registry maps providers to templates by exact match. It is filled during
// startup, frozen, and then only read, so one registry may serve concurrent
// generation runs.
type Registry struct {
	mu      sync.RWMutex
	entries map[component.TypeReference]Template
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[component.TypeReference]Template)}
}

// Register adds a template for provider. Providers must be valid type
// references and may only be registered once.
func (r *Registry) Register(provider string, tmpl Template) error {
	if tmpl == nil {
		return fmt.Errorf("register %s: nil template", provider)
	}
	ref, err := component.ParseTypeReference(provider)
	if err != nil {
		return fmt.Errorf("register %s: %w", provider, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("register %s: %w", provider, ErrFrozen)
	}
	if _, ok := r.entries[ref]; ok {
		return fmt.Errorf("register %s: template already registered", provider)
	}
	r.entries[ref] = tmpl
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Lookup returns the template registered for ref. A nil registry has no
// templates.
func (r *Registry) Lookup(ref component.TypeReference) (Template, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tmpl, ok := r.entries[ref]
	return tmpl, ok
}

// Providers lists the registered providers in sorted order.
func (r *Registry) Providers() []component.TypeReference {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]component.TypeReference, 0, len(r.entries))
	for ref := range r.entries {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TemplateError reports a template that failed to compile or render.
type TemplateError struct {
	Provider component.TypeReference
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template: %s: %v", e.Provider, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Stage names the pipeline stage that produced the error.
func (e *TemplateError) Stage() string { return "template" }

// Render runs tmpl and converts both returned errors and panics into a
// TemplateError.
func Render(tmpl Template, ctx Context) (code string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &TemplateError{Provider: ctx.Provider, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	code, err = tmpl(ctx)
	if err != nil {
		var te *TemplateError
		if errors.As(err, &te) {
			return "", err
		}
		return "", &TemplateError{Provider: ctx.Provider, Err: err}
	}
	return code, nil
}
