// Package release orchestrates one version bump: branch the repository,
// patch every target file transactionally, and roll everything back —
// files and branch — when any step fails.
package release

import (
	"log/slog"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/sokinpui/fwrel/internal/config"
	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/internal/git"
	"github.com/sokinpui/fwrel/internal/lines"
	"github.com/sokinpui/fwrel/internal/patch"
	"github.com/sokinpui/fwrel/internal/pattern"
	"github.com/sokinpui/fwrel/internal/vault"
	"github.com/sokinpui/fwrel/internal/version"
	"github.com/sokinpui/fwrel/model"
)

// Engine runs release operations against one repository.
type Engine struct {
	cfg      *config.Config
	git      *git.Git
	vault    *vault.Vault
	repoRoot string
	logger   *slog.Logger
}

// NewEngine creates an Engine. A nil logger uses slog.Default().
func NewEngine(cfg *config.Config, g *git.Git, v *vault.Vault, repoRoot string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, git: g, vault: v, repoRoot: repoRoot, logger: logger}
}

// CurrentVersion reads the authoritative version from the build script's
// last VERSION assignment.
func (e *Engine) CurrentVersion() (*semver.Version, error) {
	path := filepath.Join(e.repoRoot, e.cfg.Targets.BuildScript)
	seq, err := lines.Load(path)
	if err != nil {
		return nil, err
	}
	groups := pattern.MatchLast(seq, buildScriptRe)
	if groups == nil {
		return nil, &errors.FormatError{File: e.cfg.Targets.BuildScript, Want: `VERSION="<version>" assignment`}
	}
	return version.Parse(groups[1])
}

// Init performs the release-initiation transaction for newVersion. On
// success the target files are patched on a fresh release branch, left
// uncommitted so the operator can inspect the diff. On failure every touched
// file is restored, the original branch is checked out again and the release
// branch is deleted; the triggering error is returned.
func (e *Engine) Init(newVersion string, progress patch.ProgressFunc) (model.Summary, error) {
	next, err := version.Parse(newVersion)
	if err != nil {
		return model.Summary{}, err
	}
	current, err := e.CurrentVersion()
	if err != nil {
		return model.Summary{}, err
	}
	if err := version.ValidateSuccessor(next, current); err != nil {
		return model.Summary{}, err
	}
	tag, err := version.NewTag(next)
	if err != nil {
		return model.Summary{}, err
	}

	info, err := e.git.CurrentBranchInfo()
	if err != nil {
		return model.Summary{}, err
	}
	if info.Detached {
		return model.Summary{}, errors.Wrap(errors.ErrConflict, "HEAD is detached")
	}
	branch := e.cfg.BranchPrefix + next.String()
	if e.git.BranchExists(branch) {
		return model.Summary{}, errors.Wrapf(errors.ErrConflict, "branch %s already exists", branch)
	}
	if err := e.git.CheckoutNewBranch(branch); err != nil {
		return model.Summary{}, err
	}
	e.logger.Info("created release branch",
		slog.String("branch", branch), slog.String("from", info.Name))

	tx, err := patch.Begin(e.vault, e.repoRoot, e.logger)
	if err != nil {
		e.revertBranch(info.Name, branch)
		return model.Summary{}, err
	}

	plan := buildPlan(e.cfg.Targets, next, current, tag)
	if err := tx.Apply(plan, progress); err != nil {
		// Best-effort rollback; its diagnostic is logged inside Rollback
		// and the triggering error is what surfaces.
		_ = tx.Rollback()
		e.revertBranch(info.Name, branch)
		return model.Summary{}, err
	}

	patched := make([]string, 0, len(plan.Edits))
	for _, edit := range plan.Edits {
		patched = append(patched, edit.Path)
	}
	return model.Summary{
		Branch:  branch,
		Patched: patched,
		Message: "Inspect the diff and commit when satisfied.",
	}, nil
}

// revertBranch returns to the original branch and deletes the release
// branch. Failures are logged only: this runs during rollback, where the
// original error must stay the one reported.
func (e *Engine) revertBranch(original, release string) {
	if err := e.git.Checkout(original); err != nil {
		e.logger.Warn("failed to restore original branch",
			slog.String("branch", original), slog.String("error", err.Error()))
		return
	}
	if err := e.git.DeleteLocalBranch(release); err != nil {
		e.logger.Warn("failed to delete release branch",
			slog.String("branch", release), slog.String("error", err.Error()))
	}
}
