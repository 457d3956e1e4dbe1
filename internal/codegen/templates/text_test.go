package templates_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/studiogen/internal/codegen/templates"
	"github.com/Alia5/studiogen/internal/component"
	"github.com/Alia5/studiogen/internal/confignode"
)

func specFrom(t *testing.T, doc string) *component.Spec {
	t.Helper()
	root, err := confignode.Parse([]byte(doc), confignode.FormatJSON)
	require.NoError(t, err)
	spec, err := component.FromNode(root)
	require.NoError(t, err)
	return spec
}

var upper = template.FuncMap{"upper": strings.ToUpper}

func TestCompile(t *testing.T) {
	spec := specFrom(t, `{"provider":"pkg.models.Client","config":{"model":"gpt","retries":3}}`)
	ctx := templates.Context{Var: "client", Ident: "Client", Provider: spec.Provider, Spec: spec}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "fields",
			text: `{{.Var}} = {{.Ident}}(model="{{.Config.model}}")`,
			want: `client = Client(model="gpt")`,
		},
		{
			name: "namespace and symbol",
			text: `# {{.Namespace}} / {{.Symbol}} / {{.Provider}}`,
			want: `# pkg.models / Client / pkg.models.Client`,
		},
		{
			name: "get tolerates missing keys",
			text: `{{.Var}} = {{.Ident}}(timeout={{or (get .Config "timeout") 30}})`,
			want: `client = Client(timeout=30)`,
		},
		{
			name: "extra funcs",
			text: "{{upper .Symbol}}\n\n",
			want: `CLIENT`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := templates.Compile(string(spec.Provider), tt.text, upper)
			require.NoError(t, err)
			got, err := templates.Render(tmpl, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := templates.Compile("a.B", "{{.Var", nil)
	var terr *templates.TemplateError
	require.True(t, errors.As(err, &terr))

	spec := specFrom(t, `{"provider":"a.B","config":{}}`)
	tmpl, err := templates.Compile("a.B", `{{.Config.missing}}`, nil)
	require.NoError(t, err)
	_, err = templates.Render(tmpl, templates.Context{Var: "x", Ident: "B", Provider: "a.B", Spec: spec})
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, component.TypeReference("a.B"), terr.Provider)
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "yaml",
			file:    "templates.yaml",
			content: "pkg.models.Client: '{{.Var}} = {{.Ident}}()'\n",
		},
		{
			name:    "json",
			file:    "templates.json",
			content: `{"pkg.models.Client": "{{.Var}} = {{.Ident}}()"}`,
		},
		{
			name:    "toml",
			file:    "templates.toml",
			content: `"pkg.models.Client" = "{{.Var}} = {{.Ident}}()"` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			reg := templates.NewRegistry()
			require.NoError(t, templates.LoadFile(reg, path, nil))
			assert.Equal(t, []component.TypeReference{"pkg.models.Client"}, reg.Providers())

			tmpl, ok := reg.Lookup("pkg.models.Client")
			require.True(t, ok)
			got, err := templates.Render(tmpl, templates.Context{Var: "c", Ident: "Client", Provider: "pkg.models.Client"})
			require.NoError(t, err)
			assert.Equal(t, "c = Client()", got)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	reg := templates.NewRegistry()

	assert.ErrorContains(t, templates.LoadFile(reg, filepath.Join(dir, "missing.yaml"), nil), "read templates file")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a.B": [1]}`), 0o644))
	assert.ErrorContains(t, templates.LoadFile(reg, bad, nil), "decode templates file")

	malformed := filepath.Join(dir, "malformed.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("a.B: [unclosed\n"), 0o644))
	assert.ErrorContains(t, templates.LoadFile(reg, malformed, nil), "decode templates file")

	list := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(list, []byte(`["a.B"]`), 0o644))
	assert.ErrorContains(t, templates.LoadFile(reg, list, nil), "expected a mapping")

	badRef := filepath.Join(dir, "ref.json")
	require.NoError(t, os.WriteFile(badRef, []byte(`{"NoDot": "x"}`), 0o644))
	assert.ErrorContains(t, templates.LoadFile(reg, badRef, nil), "missing namespace separator")
}
