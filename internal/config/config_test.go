package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesOriginalConstants(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://github.com/simulationcraft/simc.git", cfg.Repo.URL)
	assert.Equal(t, "~/lgit/simc", cfg.Repo.Path)
	assert.Equal(t, "engine", cfg.Build.Dir)
	assert.Equal(t, "optimized", cfg.Build.Profile)
	assert.True(t, cfg.Build.OpenSSL)
	assert.Equal(t, 4, cfg.Build.Jobs)
	assert.Equal(t, "settings_local.py", cfg.Override.Path)
	assert.Equal(t, "settings.py", cfg.Override.Template)
	assert.Equal(t, "simc_path", cfg.Override.Key)
	assert.Equal(t, []string{"python3", "main.py"}, cfg.Downstream.Command)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "optimized", cfg.Build.Profile)
	assert.Equal(t, 4, cfg.Build.Jobs)
}

func TestLoadExplicitMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.Error(t, err)
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("build:\n  jobs: 8\n"), 0644))

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Build.Jobs)
	// Everything else keeps its default.
	assert.Equal(t, "optimized", cfg.Build.Profile)
	assert.Equal(t, "simc_path", cfg.Override.Key)
}

func TestLoadExpandsHomeRelativeClonePath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "lgit", "simc"), cfg.Repo.Path)
}

func TestLoadKeepsAbsoluteClonePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("repo:\n  path: /opt/simc\n"), 0644))

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "/opt/simc", cfg.Repo.Path)
}

func TestLoadRejectsInvalidJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("build:\n  jobs: 0\n"), 0644))

	_, err := Load("", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("bulid:\n  jobs: 4\n"), 0644))

	_, err := Load("", dir)
	require.Error(t, err)
}

func TestValidateYAMLAcceptsFullConfig(t *testing.T) {
	doc := `
repo:
  url: https://example.com/simc.git
  path: /srv/simc
build:
  dir: engine
  profile: optimized
  openssl: false
  jobs: 16
override:
  path: settings_local.py
  template: settings.py
  key: simc_path
downstream:
  command: [python3, main.py]
journal:
  path: ""
`
	require.NoError(t, ValidateYAML("simboot.yaml", []byte(doc)))
}

func TestValidateYAMLRejectsWrongType(t *testing.T) {
	err := ValidateYAML("simboot.yaml", []byte("build:\n  openssl: \"yes\"\n"))
	require.Error(t, err)
}
