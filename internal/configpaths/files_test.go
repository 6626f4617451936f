package configpaths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kbjoypad/internal/configpaths"
)

func TestFindUserConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  string
		want string
	}{
		{name: "equals form", args: []string{"serve", "--config=a.yaml"}, want: "a.yaml"},
		{name: "separate value", args: []string{"--config", "b.toml", "serve"}, want: "b.toml"},
		{name: "flag wins over env", args: []string{"--config=c.json"}, env: "env.json", want: "c.json"},
		{name: "env fallback", args: []string{"serve"}, env: "env.json", want: "env.json"},
		{name: "nothing", args: []string{"serve"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configpaths.EnvConfig, tt.env)
			assert.Equal(t, tt.want, configpaths.FindUserConfig(tt.args))
		})
	}
}

func TestConfigCandidatePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths("custom.yml")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "custom.yml", yamlPaths[0])
	assert.NotContains(t, jsonPaths, "custom.yml")
	assert.Contains(t, tomlPaths, filepath.Join("/xdg", "kbjoypad", "config.toml"))
}

func TestActiveConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	assert.Equal(t, "explicit.json", configpaths.ActiveConfig("explicit.json"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "kbjoypad.yaml"), []byte("{}"), 0o600))
	assert.Equal(t, filepath.Join(dir, "kbjoypad.yaml"), configpaths.ActiveConfig(""))
}
