// Package fwrel orchestrates the application: it binds the repository, its
// configuration and the git collaborator, and exposes the release
// operations the commands call.
package fwrel

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sokinpui/fwrel/cli"
	"github.com/sokinpui/fwrel/internal/changelog"
	"github.com/sokinpui/fwrel/internal/config"
	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/internal/git"
	"github.com/sokinpui/fwrel/internal/patch"
	"github.com/sokinpui/fwrel/internal/release"
	"github.com/sokinpui/fwrel/internal/ui"
	"github.com/sokinpui/fwrel/internal/vault"
	"github.com/sokinpui/fwrel/internal/version"
	"github.com/sokinpui/fwrel/model"
)

// App wires the release machinery to one repository working tree.
type App struct {
	cfg      *cli.Config
	conf     *config.Config
	git      *git.Git
	repoRoot string
	logger   *slog.Logger
}

// New locates the enclosing git repository and loads its configuration.
func New(cfg *cli.Config) (*App, error) {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "get working directory: %v", err)
	}
	g := git.New(wd, logger)
	root, err := g.RootPath()
	if err != nil {
		return nil, errors.Wrap(err, "not inside a git repository")
	}
	conf, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:      cfg,
		conf:     conf,
		git:      git.New(root, logger),
		repoRoot: root,
		logger:   logger,
	}, nil
}

// InitRelease branches the repository and patches every version file for
// newVersion, rolling everything back on failure.
func (a *App) InitRelease(newVersion string, progress patch.ProgressFunc) (model.Summary, error) {
	v := vault.New(a.scratchDir(), a.logger)
	engine := release.NewEngine(a.conf, a.git, v, a.repoRoot, a.logger)
	return engine.Init(newVersion, progress)
}

// ShowVersion reads the current version from the build script and derives
// its tag encodings.
func (a *App) ShowVersion() (model.VersionInfo, error) {
	engine := release.NewEngine(a.conf, a.git, vault.New(a.scratchDir(), a.logger), a.repoRoot, a.logger)
	current, err := engine.CurrentVersion()
	if err != nil {
		return model.VersionInfo{}, err
	}
	tag, err := version.NewTag(current)
	if err != nil {
		return model.VersionInfo{}, err
	}
	return model.VersionInfo{Version: current.String(), ID: tag.ID, Packed: tag.Hex()}, nil
}

// Changelog renders the markdown section for every pull request merged
// since the previous release tag.
func (a *App) Changelog(ctx context.Context) (string, error) {
	if a.conf.GitHub.Owner == "" || a.conf.GitHub.Repo == "" {
		return "", errors.Wrap(errors.ErrValidation,
			"github owner/repo not configured in "+config.FileName)
	}
	token := a.cfg.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	var since time.Time
	if tag := a.git.LastTag(); tag != "" {
		ts, err := a.git.TagTime(tag)
		if err != nil {
			return "", err
		}
		since = ts
		ui.Header("--- Pull requests merged since %s ---", tag)
	} else {
		ui.Header("--- All merged pull requests ---")
	}

	fetcher := changelog.NewFetcher(ctx, token, a.conf.GitHub.Owner, a.conf.GitHub.Repo, a.logger)
	a.warnUnknownLabels(ctx, fetcher)

	prs, err := fetcher.MergedSince(ctx, since)
	if err != nil {
		return "", err
	}

	engine := release.NewEngine(a.conf, a.git, vault.New(a.scratchDir(), a.logger), a.repoRoot, a.logger)
	current, err := engine.CurrentVersion()
	if err != nil {
		return "", err
	}
	return changelog.Render(current.String(), time.Now(), prs, a.conf.Labels), nil
}

// WriteChangelog inserts a rendered section into the changelog file,
// creating it when absent.
func (a *App) WriteChangelog(section string) error {
	path := filepath.Join(a.repoRoot, a.conf.Changelog)
	doc, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrIO, "read %s: %v", path, err)
	}
	out := changelog.InsertSection(doc, section)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
	}
	ui.Success("Updated %s", a.conf.Changelog)
	return nil
}

// warnUnknownLabels flags configured labels the repository does not define;
// a typo here would silently empty a changelog section.
func (a *App) warnUnknownLabels(ctx context.Context, fetcher *changelog.Fetcher) {
	for _, name := range append(a.conf.Labels.Features, a.conf.Labels.Fixes...) {
		ok, err := fetcher.LabelExists(ctx, name)
		if err != nil {
			a.logger.Debug("label lookup failed", slog.String("label", name))
			return
		}
		if !ok {
			ui.Warning("Label %q is not defined in %s/%s",
				name, a.conf.GitHub.Owner, a.conf.GitHub.Repo)
		}
	}
}

func (a *App) scratchDir() string {
	dir := a.conf.ScratchDir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(a.repoRoot, dir)
	}
	return dir
}
