// Package config loads the simboot tool configuration.
//
// Every field is optional: defaults reproduce the fixed constants of the
// original bootstrap workflow, so a missing simboot.yaml is not an
// error. A present file is schema-checked against the embedded CUE
// schema before it is decoded.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory when no
// explicit --config path is given.
const FileName = "simboot.yaml"

// Config is the full tool configuration.
type Config struct {
	Repo       Repo       `yaml:"repo"`
	Build      Build      `yaml:"build"`
	Override   Override   `yaml:"override"`
	Downstream Downstream `yaml:"downstream"`
	Journal    Journal    `yaml:"journal"`
}

// Repo locates the engine source tree.
type Repo struct {
	// URL is the engine's canonical remote location.
	URL string `yaml:"url"`

	// Path is the local clone directory. A leading "~" expands to the
	// operator's home directory.
	Path string `yaml:"path"`
}

// Build selects the engine build options.
type Build struct {
	Dir     string `yaml:"dir"`
	Profile string `yaml:"profile"`
	OpenSSL bool   `yaml:"openssl"`
	Jobs    int    `yaml:"jobs"`
}

// Override names the settings override file, its upstream template and
// the key this tool maintains.
type Override struct {
	Path     string `yaml:"path"`
	Template string `yaml:"template"`
	Key      string `yaml:"key"`
}

// Downstream is the analyzer command the pipeline dispatches to.
type Downstream struct {
	Command []string `yaml:"command"`
}

// Journal configures the run journal. An empty path disables it.
type Journal struct {
	Path string `yaml:"path"`
}

// Default returns the configuration matching the original workflow's
// hard-coded constants.
func Default() Config {
	return Config{
		Repo: Repo{
			URL:  "https://github.com/simulationcraft/simc.git",
			Path: "~/lgit/simc",
		},
		Build: Build{
			Dir:     "engine",
			Profile: "optimized",
			OpenSSL: true,
			Jobs:    4,
		},
		Override: Override{
			Path:     "settings_local.py",
			Template: "settings.py",
			Key:      "simc_path",
		},
		Downstream: Downstream{
			Command: []string{"python3", "main.py"},
		},
		Journal: Journal{
			Path: "simboot.db",
		},
	}
}

// Load reads the configuration for a run.
//
// With an explicit path the file must exist. Otherwise FileName is
// looked up in workdir and silently skipped when absent, leaving the
// defaults in force. Present files are schema-validated before decode;
// unset fields keep their default values.
func Load(explicitPath, workdir string) (Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = filepath.Join(workdir, FileName)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return expand(cfg)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := ValidateYAML(path, data); err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return expand(cfg)
}

// expand resolves the home-relative clone path.
func expand(cfg Config) (Config, error) {
	if strings.HasPrefix(cfg.Repo.Path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.Repo.Path = filepath.Join(home, strings.TrimPrefix(cfg.Repo.Path, "~"))
	}
	return cfg, nil
}
