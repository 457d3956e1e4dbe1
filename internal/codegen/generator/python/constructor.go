package python

import (
	"fmt"

	"github.com/Alia5/studiogen/internal/codegen/templates"
	"github.com/Alia5/studiogen/internal/component"
)

// DefaultEntrypoint is the class method the fallback path calls.
const DefaultEntrypoint = "load_component"

// EmitConstructor produces the body code that builds the root component.
// Only the root is looked up in the registry: nested components stay part of
// the fallback literal even when a template exists for their provider.
func EmitConstructor(spec *component.Spec, varName, entrypoint string, width int, reg *templates.Registry, imports *ImportSet) (string, error) {
	ident, ok := imports.Ident(spec.Provider)
	if !ok {
		// Unreachable when imports were built from the same tree.
		return "", fmt.Errorf("no import for provider %s", spec.Provider)
	}

	if tmpl, ok := reg.Lookup(spec.Provider); ok {
		return templates.Render(tmpl, templates.Context{
			Var:      varName,
			Ident:    ident,
			Provider: spec.Provider,
			Spec:     spec,
		})
	}

	if entrypoint == "" {
		entrypoint = DefaultEntrypoint
	}
	head := fmt.Sprintf("%s = %s.%s(", varName, ident, entrypoint)
	literal, err := renderAt(spec.Node, "$", "", len(head)+1, width)
	if err != nil {
		return "", err
	}
	return head + literal + ")", nil
}
