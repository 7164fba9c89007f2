// Package git wraps the handful of git operations a release needs: branch
// inspection, branch creation and deletion, and tag lookup for the
// changelog range.
package git

import (
	"log/slog"
	"os/exec"
	"time"
)

// BranchInfo describes where HEAD currently points.
type BranchInfo struct {
	Name     string
	Detached bool
}

// Git runs git against one repository working tree.
type Git struct {
	repoPath string
	executor CommandExecutor
	logger   *slog.Logger
}

// New creates a Git bound to repoPath with the default executor.
func New(repoPath string, logger *slog.Logger) *Git {
	return NewWithExecutor(repoPath, NewExecExecutor(), logger)
}

// NewWithExecutor creates a Git with a custom executor, used by tests.
func NewWithExecutor(repoPath string, executor CommandExecutor, logger *slog.Logger) *Git {
	if logger == nil {
		logger = slog.Default()
	}
	return &Git{repoPath: repoPath, executor: executor, logger: logger}
}

// RootPath returns the absolute path of the repository working tree.
func (g *Git) RootPath() (string, error) {
	return g.run("rev-parse", "--show-toplevel")
}

// CurrentBranchInfo reports the checked-out branch. A detached HEAD is
// reported as such, not as an error.
func (g *Git) CurrentBranchInfo() (BranchInfo, error) {
	name, err := g.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return BranchInfo{}, err
	}
	// rev-parse prints the literal "HEAD" when detached.
	if name == "HEAD" {
		return BranchInfo{Detached: true}, nil
	}
	return BranchInfo{Name: name}, nil
}

// BranchExists reports whether a local branch of that name exists.
func (g *Git) BranchExists(name string) bool {
	_, err := g.run("show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// CheckoutNewBranch creates and checks out a new branch. Git itself fails
// when the branch already exists.
func (g *Git) CheckoutNewBranch(name string) error {
	_, err := g.run("checkout", "-b", name)
	return err
}

// Checkout switches to an existing branch.
func (g *Git) Checkout(name string) error {
	_, err := g.run("checkout", name)
	return err
}

// DeleteLocalBranch force-deletes a local branch.
func (g *Git) DeleteLocalBranch(name string) error {
	_, err := g.run("branch", "-D", name)
	return err
}

// LastTag returns the most recent reachable tag, or "" when the repository
// has none.
func (g *Git) LastTag() string {
	tag, err := g.run("describe", "--tags", "--abbrev=0")
	if err != nil {
		return ""
	}
	return tag
}

// TagTime returns the commit time of a tag.
func (g *Git) TagTime(tag string) (time.Time, error) {
	out, err := g.run("log", "-1", "--format=%cI", tag)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, out)
}

func (g *Git) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.repoPath
	g.logger.Debug("running git", slog.Any("args", args))
	return g.executor.ExecuteWithOutput(cmd)
}
