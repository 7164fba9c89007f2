// Package config loads .fwrel.yaml from the repository root. Every field
// has a default, so running without a config file patches the standard
// firmware file set.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/fwrel/internal/errors"
)

// FileName is the config file looked up at the repository root.
const FileName = ".fwrel.yaml"

// Targets names the files a release patches, relative to the repo root.
type Targets struct {
	BuildScript string `yaml:"build_script"`
	VersionMk   string `yaml:"version_mk"`
	ModulesMk   string `yaml:"modules_mk"`
	Header      string `yaml:"header"`
}

// GitHub identifies the repository queried for merged pull requests.
type GitHub struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Labels maps changelog sections to the PR labels that feed them.
type Labels struct {
	Features []string `yaml:"features"`
	Fixes    []string `yaml:"fixes"`
}

// Config models .fwrel.yaml.
type Config struct {
	Targets      Targets `yaml:"targets"`
	GitHub       GitHub  `yaml:"github"`
	Labels       Labels  `yaml:"labels"`
	BranchPrefix string  `yaml:"branch_prefix"`
	ScratchDir   string  `yaml:"scratch_dir"`
	Changelog    string  `yaml:"changelog"`
}

// Default returns the configuration used when no .fwrel.yaml exists.
func Default() *Config {
	return &Config{
		Targets: Targets{
			BuildScript: "build.sh",
			VersionMk:   "version.mk",
			ModulesMk:   "modules.mk",
			Header:      "include/system_version.h",
		},
		Labels: Labels{
			Features: []string{"feature", "enhancement"},
			Fixes:    []string{"bug", "fix"},
		},
		BranchPrefix: "release/v",
		Changelog:    "CHANGELOG.md",
	}
}

// Load reads .fwrel.yaml from repoRoot, overlaying defaults. A missing file
// is not an error.
func Load(repoRoot string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(repoRoot, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(errors.ErrIO, "read %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrValidation, "parse %s: %v", path, err)
	}
	return cfg, nil
}
