package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fwrel/internal/errors"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "build.sh", cfg.Targets.BuildScript)
	assert.Equal(t, "release/v", cfg.BranchPrefix)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	repo := t.TempDir()
	content := `
targets:
  header: src/sys/version.h
github:
  owner: acme
  repo: firmware
labels:
  fixes: [bugfix]
`
	require.NoError(t, os.WriteFile(filepath.Join(repo, FileName), []byte(content), 0644))

	cfg, err := Load(repo)
	require.NoError(t, err)
	assert.Equal(t, "src/sys/version.h", cfg.Targets.Header)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, []string{"bugfix"}, cfg.Labels.Fixes)
	// Untouched fields keep their defaults.
	assert.Equal(t, "version.mk", cfg.Targets.VersionMk)
	assert.Equal(t, []string{"feature", "enhancement"}, cfg.Labels.Features)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, FileName), []byte("targets: ["), 0644))

	_, err := Load(repo)
	assert.ErrorIs(t, err, errors.ErrValidation)
}
