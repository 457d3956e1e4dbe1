package templates

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/Alia5/studiogen/internal/component"
	"github.com/Alia5/studiogen/internal/confignode"
)

// textData is the value a text template is executed against.
type textData struct {
	Var       string
	Ident     string
	Provider  string
	Namespace string
	Symbol    string
	Spec      map[string]any
	Config    any
}

// Compile turns text/template source into a Template. funcs is merged over
// the built-in "get" function; the generator contributes "py".
func Compile(provider, text string, funcs template.FuncMap) (Template, error) {
	fm := template.FuncMap{"get": get}
	for k, v := range funcs {
		fm[k] = v
	}
	tmpl, err := template.New(provider).Funcs(fm).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, &TemplateError{Provider: component.TypeReference(provider), Err: err}
	}

	return func(ctx Context) (string, error) {
		data := textData{
			Var:       ctx.Var,
			Ident:     ctx.Ident,
			Provider:  string(ctx.Provider),
			Namespace: ctx.Provider.Namespace(),
			Symbol:    ctx.Provider.Symbol(),
		}
		if ctx.Spec != nil {
			data.Spec, _ = confignode.ToNative(ctx.Spec.Node).(map[string]any)
			if cfg, ok := ctx.Spec.Config(); ok {
				data.Config = confignode.ToNative(cfg)
			}
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", err
		}
		return strings.TrimRight(buf.String(), "\n"), nil
	}, nil
}

// get looks key up in a map and yields nil when either is missing.
func get(m any, key string) any {
	mm, ok := m.(map[string]any)
	if !ok {
		return nil
	}
	return mm[key]
}

// LoadFile reads a provider → template mapping (JSON, YAML or TOML by
// extension) and registers every entry into r, in sorted provider order.
func LoadFile(r *Registry, path string, funcs template.FuncMap) error {
	root, err := confignode.ParseFile(path)
	if err != nil {
		var perr *confignode.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("decode templates file %s: %w", path, err)
		}
		return fmt.Errorf("read templates file: %w", err)
	}

	entries, ok := root.(confignode.Map)
	if !ok {
		return fmt.Errorf("decode templates file %s: expected a mapping of provider to template", path)
	}

	for _, provider := range entries.Keys() {
		text, ok := entries.GetString(provider)
		if !ok {
			return fmt.Errorf("decode templates file %s: template for %s must be a string", path, provider)
		}
		tmpl, err := Compile(provider, text, funcs)
		if err != nil {
			return err
		}
		if err := r.Register(provider, tmpl); err != nil {
			return err
		}
	}
	return nil
}
