package python

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/studiogen/internal/codegen/meta"
	"github.com/Alia5/studiogen/internal/codegen/templates"
	"github.com/Alia5/studiogen/internal/component"
	"github.com/Alia5/studiogen/internal/confignode"
)

const teamDoc = `{"provider":"ns.TeamX","config":{"name":"t1","members":[{"provider":"ns.AgentY","config":{"name":"a1"}}]}}`

func loadSpec(t *testing.T, doc string) (*component.Spec, []component.TypeReference) {
	t.Helper()
	root, err := confignode.Parse([]byte(doc), confignode.FormatJSON)
	require.NoError(t, err)
	refs, err := component.CollectReferences(root)
	require.NoError(t, err)
	spec, err := component.FromNode(root)
	require.NoError(t, err)
	return spec, refs
}

func TestEmitConstructorFallback(t *testing.T) {
	spec, refs := loadSpec(t, teamDoc)

	got, err := EmitConstructor(spec, "team", "", 0, nil, GroupImports(refs))
	require.NoError(t, err)
	assert.Equal(t,
		`team = TeamX.load_component({"config": {"members": [{"config": {"name": "a1"}, "provider": "ns.AgentY"}], "name": "t1"}, "provider": "ns.TeamX"})`,
		got)

	got, err = EmitConstructor(spec, "t", "reconstruct", 0, nil, GroupImports(refs))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "t = TeamX.reconstruct({"))
}

func TestEmitConstructorWrapped(t *testing.T) {
	spec, refs := loadSpec(t, teamDoc)

	got, err := EmitConstructor(spec, "team", "", DefaultWidth, nil, GroupImports(refs))
	require.NoError(t, err)
	want := `team = TeamX.load_component({
    "config": {
        "members": [{"config": {"name": "a1"}, "provider": "ns.AgentY"}],
        "name": "t1",
    },
    "provider": "ns.TeamX",
})`
	assert.Equal(t, want, got)

	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), DefaultWidth)
	}
}

func TestEmitConstructorTemplate(t *testing.T) {
	spec, refs := loadSpec(t, `{"provider":"pkg.models.Client","config":{"model":"m1","retries":3}}`)

	reg := templates.NewRegistry()
	require.NoError(t, reg.Register("pkg.models.Client", func(ctx templates.Context) (string, error) {
		cfg, _ := ctx.Spec.Config()
		model, _ := cfg.(confignode.Map).GetString("model")
		return fmt.Sprintf("%s = %s(model=%q)", ctx.Var, ctx.Ident, model), nil
	}))

	got, err := EmitConstructor(spec, "client", "", DefaultWidth, reg, GroupImports(refs))
	require.NoError(t, err)
	assert.Equal(t, `client = Client(model="m1")`, got)
}

func TestEmitConstructorTemplateRootOnly(t *testing.T) {
	spec, refs := loadSpec(t, teamDoc)

	reg := templates.NewRegistry()
	require.NoError(t, reg.Register("ns.AgentY", func(ctx templates.Context) (string, error) {
		return "should not be used", nil
	}))

	got, err := EmitConstructor(spec, "team", "", 0, reg, GroupImports(refs))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "team = TeamX.load_component("))
	assert.Contains(t, got, `"provider": "ns.AgentY"`)
}

func TestEmitConstructorTemplateFailure(t *testing.T) {
	spec, refs := loadSpec(t, teamDoc)

	reg := templates.NewRegistry()
	require.NoError(t, reg.Register("ns.TeamX", func(ctx templates.Context) (string, error) {
		return "", errors.New("boom")
	}))

	_, err := EmitConstructor(spec, "team", "", 0, reg, GroupImports(refs))
	var terr *templates.TemplateError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, component.TypeReference("ns.TeamX"), terr.Provider)
	assert.Equal(t, "template", terr.Stage())
}

func TestGenerateProgram(t *testing.T) {
	spec, refs := loadSpec(t, teamDoc)
	md := &meta.Metadata{Source: "/tmp/in/team.json", Spec: spec, References: refs}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	got, err := Generate(logger, md, nil, meta.Options{Entrypoint: "reconstruct"})
	require.NoError(t, err)

	want := `# This file was generated from: team.json
# It reconstructs your component configuration in pure Python.
# You can now edit it freely (no configuration file needed at runtime).

from ns import AgentY, TeamX

team = TeamX.reconstruct({"config": {"members": [{"config": {"name": "a1"}, "provider": "ns.AgentY"}], "name": "t1"}, "provider": "ns.TeamX"})

import asyncio


async def main():
    # 'team' is constructed above. Provide any task you want to run:
    result = await team.run(task="Say hello (generated code).")
    print(result)


if __name__ == "__main__":
    asyncio.run(main())
`
	assert.Equal(t, want, got)
}

func TestCheckOptions(t *testing.T) {
	assert.NoError(t, CheckOptions(meta.Options{Var: "my_team2", Entrypoint: "load_component"}))
	assert.NoError(t, CheckOptions(meta.Options{}))
	assert.Error(t, CheckOptions(meta.Options{Var: "2team"}))
	assert.Error(t, CheckOptions(meta.Options{Var: "team-x"}))
	assert.Error(t, CheckOptions(meta.Options{Entrypoint: "load component"}))
}

func TestAssemble(t *testing.T) {
	got := Assemble("# head\n", nil, "x = 1\n", "stub")
	assert.Equal(t, "# head\n\nx = 1\n\nstub\n", got)

	got = Assemble("# head", []string{"from a import B", "from c import D"}, "x = 1", "stub")
	assert.Equal(t, "# head\n\nfrom a import B\nfrom c import D\n\nx = 1\n\nstub\n", got)
}

func TestHeader(t *testing.T) {
	assert.True(t, strings.HasPrefix(Header("dir/cfg.yaml"), "# This file was generated from: cfg.yaml\n"))
	assert.True(t, strings.HasPrefix(Header(""), "# This file was generated from: <stdin>\n"))
}

func TestFuncMapPy(t *testing.T) {
	py := FuncMap()["py"].(func(any) (string, error))

	got, err := py(map[string]any{"b": []any{true, nil}, "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a": "x", "b": [True, None]}`, got)

	_, err = py(struct{}{})
	assert.Error(t, err)
}
