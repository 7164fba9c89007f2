package patch

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/internal/pattern"
	"github.com/sokinpui/fwrel/internal/vault"
)

func replaceStep(desc string, re *regexp.Regexp, repl string) Step {
	return Step{
		Desc: desc,
		Apply: func(seq []string) ([]string, bool, error) {
			ok := pattern.ReplaceLast(seq, re, repl)
			return seq, ok, nil
		},
	}
}

func setupRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	repo := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(repo, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return repo
}

func readRepo(t *testing.T, repo string, rels ...string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(rels))
	for _, rel := range rels {
		data, err := os.ReadFile(filepath.Join(repo, rel))
		require.NoError(t, err)
		out[rel] = string(data)
	}
	return out
}

func begin(t *testing.T, repo string) *Transaction {
	t.Helper()
	v := vault.New(filepath.Join(t.TempDir(), "scratch"), nil)
	tx, err := Begin(v, repo, nil)
	require.NoError(t, err)
	return tx
}

func TestApplyCommits(t *testing.T) {
	repo := setupRepo(t, map[string]string{
		"build.sh":   `VERSION="1.2.3"`,
		"version.mk": "VERSION_STRING = 1.2.3\nVERSION = 120",
	})
	tx := begin(t, repo)

	var progressed []int
	plan := Plan{Edits: []FileEdit{
		{Path: "build.sh", Steps: []Step{
			replaceStep(`VERSION="…"`, regexp.MustCompile(`VERSION="[^"]+"`), `VERSION="1.2.4"`),
		}},
		{Path: "version.mk", Steps: []Step{
			replaceStep("VERSION_STRING", regexp.MustCompile(`^VERSION_STRING = \S+$`), "VERSION_STRING = 1.2.4"),
			replaceStep("VERSION", regexp.MustCompile(`^VERSION = \d+$`), "VERSION = 121"),
		}},
	}}

	err := tx.Apply(plan, func(current, total int) { progressed = append(progressed, current) })
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, tx.State())
	assert.Equal(t, []int{1, 2}, progressed)

	got := readRepo(t, repo, "build.sh", "version.mk")
	assert.Equal(t, `VERSION="1.2.4"`, got["build.sh"])
	assert.Equal(t, "VERSION_STRING = 1.2.4\nVERSION = 121", got["version.mk"])
}

func TestApplyFormatMismatchTriggersFullRollback(t *testing.T) {
	files := map[string]string{
		"build.sh":   `VERSION="1.2.3"`,
		"version.mk": "# counter moved elsewhere",
	}
	repo := setupRepo(t, files)
	tx := begin(t, repo)

	plan := Plan{Edits: []FileEdit{
		{Path: "build.sh", Steps: []Step{
			replaceStep(`VERSION="…"`, regexp.MustCompile(`VERSION="[^"]+"`), `VERSION="1.2.4"`),
		}},
		{Path: "version.mk", Steps: []Step{
			replaceStep("VERSION", regexp.MustCompile(`^VERSION = \d+$`), "VERSION = 121"),
		}},
	}}

	err := tx.Apply(plan, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFormatMismatch)

	require.NoError(t, tx.Rollback())
	assert.Equal(t, StateRolledBack, tx.State())

	// Every touched file is back to its pre-transaction bytes.
	assert.Equal(t, files, readRepo(t, repo, "build.sh", "version.mk"))
}

func TestApplyWritesFileOnlyWhenAllStepsMatch(t *testing.T) {
	content := "VERSION_STRING = 1.2.3\n# no counter line"
	repo := setupRepo(t, map[string]string{"version.mk": content})
	tx := begin(t, repo)

	plan := Plan{Edits: []FileEdit{
		{Path: "version.mk", Steps: []Step{
			replaceStep("VERSION_STRING", regexp.MustCompile(`^VERSION_STRING = \S+$`), "VERSION_STRING = 1.2.4"),
			replaceStep("VERSION", regexp.MustCompile(`^VERSION = \d+$`), "VERSION = 121"),
		}},
	}}

	err := tx.Apply(plan, nil)
	assert.ErrorIs(t, err, errors.ErrFormatMismatch)

	// The first step matched, but no partial edit was persisted.
	got := readRepo(t, repo, "version.mk")
	assert.Equal(t, content, got["version.mk"])
}

func TestApplyMissingFile(t *testing.T) {
	repo := setupRepo(t, nil)
	tx := begin(t, repo)

	plan := Plan{Edits: []FileEdit{{Path: "absent.mk", Steps: []Step{
		replaceStep("VERSION", regexp.MustCompile(`^VERSION`), "VERSION = 1"),
	}}}}

	err := tx.Apply(plan, nil)
	assert.ErrorIs(t, err, errors.ErrIO)
}
