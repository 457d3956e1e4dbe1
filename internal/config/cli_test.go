package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/studiogen/internal/config"
	th "github.com/Alia5/studiogen/internal/testing"
)

func newParser(t *testing.T, cli *config.CLI, opts ...kong.Option) *kong.Kong {
	t.Helper()
	opts = append([]kong.Option{kong.Name("studiogen"), kong.Exit(func(int) { t.Fatal("unexpected exit") })}, opts...)
	parser, err := kong.New(cli, opts...)
	require.NoError(t, err)
	return parser
}

func TestParseGenerateDefaults(t *testing.T) {
	var cli config.CLI
	ctx, err := newParser(t, &cli).Parse([]string{"generate", "team.json"})
	require.NoError(t, err)

	assert.Equal(t, "generate <input>", ctx.Command())
	assert.Equal(t, "team.json", cli.Generate.Input)
	assert.Equal(t, "run_team_generated.py", cli.Generate.Out)
	assert.Equal(t, "team", cli.Generate.Var)
	assert.Equal(t, "load_component", cli.Generate.Entrypoint)
	assert.Equal(t, 88, cli.Generate.Width)
	assert.Equal(t, "info", cli.Log.Level)
}

func TestParseFlagsAndEnv(t *testing.T) {
	t.Setenv("STUDIOGEN_VAR", "crew")

	var cli config.CLI
	_, err := newParser(t, &cli).Parse([]string{
		"--log.level=debug", "generate", "team.yaml",
		"-o", "out.py", "--entrypoint", "reconstruct", "--format", "yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cli.Log.Level)
	assert.Equal(t, "crew", cli.Generate.Var)
	assert.Equal(t, "out.py", cli.Generate.Out)
	assert.Equal(t, "reconstruct", cli.Generate.Entrypoint)
	assert.Equal(t, "yaml", cli.Generate.Format)

	_, err = newParser(t, &cli).Parse([]string{"generate", "x", "--format", "xml"})
	assert.Error(t, err)
}

func TestParseCollaborators(t *testing.T) {
	var cli config.CLI
	_, err := newParser(t, &cli).Parse([]string{
		"dataset", "--commune", "Paris", "--year", "2023", "--refine", "secteur=x", "--api-key", "k", "--mean-field", "conso",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", cli.Dataset.Commune)
	assert.Equal(t, 2023, cli.Dataset.Year)
	assert.Equal(t, map[string]string{"secteur": "x"}, cli.Dataset.Refine)
	assert.Equal(t, "k", cli.Dataset.APIKey)
	assert.Equal(t, 20*time.Second, cli.Dataset.Timeout)

	cli = config.CLI{}
	_, err = newParser(t, &cli).Parse([]string{"probe", "https://a.example", "https://b.example", "--timeout", "2s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cli.Probe.Targets)
	assert.Equal(t, 2*time.Second, cli.Probe.Timeout)

	cli = config.CLI{}
	_, err = newParser(t, &cli).Parse([]string{"feed"})
	require.NoError(t, err)
	assert.Equal(t, "https://renewablesnow.com/feed/", cli.Feed.URL)
	assert.Equal(t, 5, cli.Feed.Limit)
}

func TestConfigFileLoading(t *testing.T) {
	cfg := th.WriteFile(t, "studiogen.json", `{"log": {"level": "trace"}, "width": 60, "var": "squad"}`)

	var cli config.CLI
	_, err := newParser(t, &cli,
		kong.Configuration(kong.JSON, cfg),
		kong.Configuration(kongyaml.Loader, filepath.Join(t.TempDir(), "missing.yaml")),
	).
		Parse([]string{"generate", "team.json", "--var", "flagwins"})
	require.NoError(t, err)
	assert.Equal(t, "trace", cli.Log.Level)
	assert.Equal(t, 60, cli.Generate.Width)
	assert.Equal(t, "flagwins", cli.Generate.Var)
}
