package release

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fwrel/internal/config"
	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/internal/git"
	"github.com/sokinpui/fwrel/internal/vault"
)

const (
	buildScript = "#!/bin/sh\n" +
		"set -e\n" +
		"VERSION=\"0.6.2\"\n" +
		"make all VERSION=\"${VERSION}\"\n"

	versionMk = "VERSION_STRING = 0.6.2\n" +
		"VERSION = 120\n"

	modulesMk = "SYSTEM_PART1_MODULE_VERSION ?= 120\n" +
		"SYSTEM_PART2_MODULE_VERSION ?= 34\n" +
		"SYSTEM_PART3_MODULE_VERSION ?= 7\n"

	systemHeader = "#ifndef SYSTEM_VERSION_H\n" +
		"#define SYSTEM_VERSION_H\n" +
		"\n" +
		"#define SYSTEM_VERSION_v061 0x06010000\n" +
		"#define SYSTEM_VERSION_v062 0x06020000\n" +
		"\n" +
		"#define SYSTEM_VERSION SYSTEM_VERSION_v062\n" +
		"\n" +
		"#define SYSTEM_VERSION_061\n" +
		"#define SYSTEM_VERSION_062\n" +
		"\n" +
		"#endif\n"
)

// scriptedGit satisfies git.CommandExecutor with canned branch state.
type scriptedGit struct {
	branch   string
	existing map[string]bool
	calls    []string
}

func (s *scriptedGit) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	key := strings.Join(cmd.Args[1:], " ")
	s.calls = append(s.calls, key)
	switch {
	case key == "rev-parse --abbrev-ref HEAD":
		return s.branch, nil
	case strings.HasPrefix(key, "show-ref "):
		name := strings.TrimPrefix(cmd.Args[len(cmd.Args)-1], "refs/heads/")
		if s.existing[name] {
			return "", nil
		}
		return "", errors.NewGitError("show-ref", nil, errors.ErrExternalTool, "")
	default:
		return "", nil
	}
}

func setupRepo(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	files := map[string]string{
		"build.sh":                 buildScript,
		"version.mk":               versionMk,
		"modules.mk":               modulesMk,
		"include/system_version.h": systemHeader,
	}
	for rel, content := range files {
		path := filepath.Join(repo, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return repo
}

func newEngine(t *testing.T, repo string, sg *scriptedGit) *Engine {
	t.Helper()
	g := git.NewWithExecutor(repo, sg, nil)
	v := vault.New(filepath.Join(t.TempDir(), "scratch"), nil)
	return NewEngine(config.Default(), g, v, repo, nil)
}

func readRel(t *testing.T, repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repo, rel))
	require.NoError(t, err)
	return string(data)
}

func TestCurrentVersion(t *testing.T) {
	repo := setupRepo(t)
	e := newEngine(t, repo, &scriptedGit{branch: "main"})

	v, err := e.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "0.6.2", v.String())
}

func TestInitPatchesEveryTarget(t *testing.T) {
	repo := setupRepo(t)
	sg := &scriptedGit{branch: "main"}
	e := newEngine(t, repo, sg)

	summary, err := e.Init("0.7.0-rc.2", nil)
	require.NoError(t, err)

	assert.Equal(t, "release/v0.7.0-rc.2", summary.Branch)
	assert.Equal(t, []string{"build.sh", "version.mk", "modules.mk", "include/system_version.h"},
		summary.Patched)
	assert.Contains(t, sg.calls, "checkout -b release/v0.7.0-rc.2")

	assert.Contains(t, readRel(t, repo, "build.sh"), `VERSION="0.7.0-rc.2"`)
	// Other lines of the script survive untouched.
	assert.Contains(t, readRel(t, repo, "build.sh"), `make all VERSION="${VERSION}"`)

	// Minor bump: counters jump to the next multiple of 100.
	assert.Equal(t, "VERSION_STRING = 0.7.0-rc.2\nVERSION = 200", readRel(t, repo, "version.mk"))
	assert.Equal(t,
		"SYSTEM_PART1_MODULE_VERSION ?= 200\n"+
			"SYSTEM_PART2_MODULE_VERSION ?= 100\n"+
			"SYSTEM_PART3_MODULE_VERSION ?= 100",
		readRel(t, repo, "modules.mk"))

	header := readRel(t, repo, "include/system_version.h")
	assert.Contains(t, header,
		"#define SYSTEM_VERSION_v062 0x06020000\n#define SYSTEM_VERSION_v070RC2 0x07000002\n")
	assert.Contains(t, header, "#define SYSTEM_VERSION SYSTEM_VERSION_v070RC2\n")
	assert.Contains(t, header, "#define SYSTEM_VERSION_062\n#define SYSTEM_VERSION_070RC2\n")
	assert.NotContains(t, header, "SYSTEM_VERSION SYSTEM_VERSION_v062")
}

func TestInitValidation(t *testing.T) {
	repo := setupRepo(t)
	sg := &scriptedGit{branch: "main"}
	e := newEngine(t, repo, sg)

	t.Run("malformed version", func(t *testing.T) {
		_, err := e.Init("070", nil)
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("not a successor", func(t *testing.T) {
		_, err := e.Init("0.6.2", nil)
		assert.ErrorIs(t, err, errors.ErrValidation)
	})

	// Validation fails before any branch is touched.
	for _, call := range sg.calls {
		assert.NotContains(t, call, "checkout")
	}
}

func TestInitConflicts(t *testing.T) {
	t.Run("detached head", func(t *testing.T) {
		repo := setupRepo(t)
		e := newEngine(t, repo, &scriptedGit{branch: "HEAD"})
		_, err := e.Init("0.7.0", nil)
		assert.ErrorIs(t, err, errors.ErrConflict)
	})

	t.Run("branch already exists", func(t *testing.T) {
		repo := setupRepo(t)
		sg := &scriptedGit{branch: "main", existing: map[string]bool{"release/v0.7.0": true}}
		e := newEngine(t, repo, sg)
		_, err := e.Init("0.7.0", nil)
		assert.ErrorIs(t, err, errors.ErrConflict)
	})
}

func TestInitRollsBackOnFormatMismatch(t *testing.T) {
	repo := setupRepo(t)
	// The header lost the define block the plan expects.
	require.NoError(t, os.WriteFile(
		filepath.Join(repo, "include", "system_version.h"),
		[]byte("#ifndef SYSTEM_VERSION_H\n#endif\n"), 0644))

	before := map[string]string{}
	for _, rel := range []string{"build.sh", "version.mk", "modules.mk", "include/system_version.h"} {
		before[rel] = readRel(t, repo, rel)
	}

	sg := &scriptedGit{branch: "main"}
	e := newEngine(t, repo, sg)

	_, err := e.Init("0.7.0", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFormatMismatch)

	// Earlier files were already patched and must be restored byte for byte.
	for rel, want := range before {
		assert.Equal(t, want, readRel(t, repo, rel), rel)
	}

	// The branch side effects were reverted too.
	assert.Contains(t, sg.calls, "checkout main")
	assert.Contains(t, sg.calls, "branch -D release/v0.7.0")
}

func TestInitParseErrorOnNonNumericCounter(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "version.mk"),
		[]byte("VERSION_STRING = 0.6.2\nVERSION = twelve\n"), 0644))

	before := readRel(t, repo, "build.sh")

	e := newEngine(t, repo, &scriptedGit{branch: "main"})
	_, err := e.Init("0.7.0", nil)
	assert.ErrorIs(t, err, errors.ErrParse)

	// build.sh was patched before the failure and must be restored.
	assert.Equal(t, before, readRel(t, repo, "build.sh"))
}
