package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv("STUDIOGEN_CONFIG", "")

	assert.Equal(t, "a.yaml", findUserConfig([]string{"generate", "--config=a.yaml", "in.json"}))
	assert.Equal(t, "b.toml", findUserConfig([]string{"--config", "b.toml", "generate"}))
	assert.Equal(t, "", findUserConfig([]string{"generate", "--config"}))

	t.Setenv("STUDIOGEN_CONFIG", "env.json")
	assert.Equal(t, "env.json", findUserConfig([]string{"version"}))
}
