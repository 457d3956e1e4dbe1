package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG lookup is unix only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "studiogen"), dir)

	p, err := DefaultNamedConfigPath("generate", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "studiogen", "generate.yaml"), p)
}

func TestConfigCandidatePaths(t *testing.T) {
	tests := []struct {
		name     string
		userPath string
		first    func(j, y, tm []string) string
	}{
		{name: "json", userPath: "my.json", first: func(j, _, _ []string) string { return j[0] }},
		{name: "unknown extension goes to json", userPath: "my.conf", first: func(j, _, _ []string) string { return j[0] }},
		{name: "yaml", userPath: "my.yml", first: func(_, y, _ []string) string { return y[0] }},
		{name: "toml", userPath: "my.toml", first: func(_, _, tm []string) string { return tm[0] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, y, tm := ConfigCandidatePaths(tt.userPath)
			assert.Equal(t, tt.userPath, tt.first(j, y, tm))
		})
	}

	j, y, tm := ConfigCandidatePaths("")
	assert.NotEmpty(t, j)
	assert.Len(t, y, 2*len(j))
	assert.Len(t, tm, len(j))
	for _, p := range j {
		assert.Equal(t, ".json", filepath.Ext(p))
	}
}
