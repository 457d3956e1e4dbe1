// Package python emits a Python program that rebuilds a component graph.
package python

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Alia5/studiogen/internal/codegen/meta"
	"github.com/Alia5/studiogen/internal/codegen/templates"
)

// DefaultVar is the variable the root component is assigned to.
const DefaultVar = "team"

func Generate(logger *slog.Logger, md *meta.Metadata, reg *templates.Registry, opts meta.Options) (string, error) {
	if opts.Var == "" {
		opts.Var = DefaultVar
	}
	if err := CheckOptions(opts); err != nil {
		return "", err
	}

	imports := GroupImports(md.References)
	logger.Debug("Grouped imports", "namespaces", len(imports.Groups()))

	body, err := EmitConstructor(md.Spec, opts.Var, opts.Entrypoint, opts.Width, reg, imports)
	if err != nil {
		return "", err
	}
	if _, ok := reg.Lookup(md.Spec.Provider); ok {
		logger.Debug("Rendered explicit template", "provider", md.Spec.Provider)
	} else {
		logger.Debug("Rendered fallback constructor", "provider", md.Spec.Provider)
	}

	return Assemble(Header(md.Source), imports.Statements(), body, RunnableStub(opts.Var)), nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CheckOptions rejects variable or entrypoint names that are not Python
// identifiers.
func CheckOptions(opts meta.Options) error {
	if opts.Var != "" && !identifier.MatchString(opts.Var) {
		return fmt.Errorf("invalid variable name %q", opts.Var)
	}
	if opts.Entrypoint != "" && !identifier.MatchString(opts.Entrypoint) {
		return fmt.Errorf("invalid entrypoint %q", opts.Entrypoint)
	}
	return nil
}
