package changelog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/model"
)

// Fetcher lists merged pull requests of one GitHub repository.
type Fetcher struct {
	client *github.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. An empty token means unauthenticated
// requests, which GitHub rate-limits aggressively.
func NewFetcher(ctx context.Context, token, owner, repo string, logger *slog.Logger) *Fetcher {
	var client *github.Client
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, src))
	} else {
		client = github.NewClient(nil)
	}
	return NewFetcherWithClient(client, owner, repo, logger)
}

// NewFetcherWithClient creates a Fetcher around an existing client, used by
// tests to point at a stub server.
func NewFetcherWithClient(client *github.Client, owner, repo string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, owner: owner, repo: repo, logger: logger}
}

// LabelExists reports whether the repository defines a label of that name.
func (f *Fetcher) LabelExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := f.client.Issues.GetLabel(ctx, f.owner, f.repo, name)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return false, nil
		}
		return false, errors.Wrapf(errors.ErrExternalTool, "look up label %q: %v", name, err)
	}
	return true, nil
}

// MergedSince pages through the repository's closed pull requests and
// returns those merged after since, newest first, with their labels. A zero
// since returns every merged PR.
func (f *Fetcher) MergedSince(ctx context.Context, since time.Time) ([]model.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var merged []model.PullRequest
	for {
		prs, resp, err := f.client.PullRequests.List(ctx, f.owner, f.repo, opts)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrExternalTool, "list pull requests: %v", err)
		}
		for _, pr := range prs {
			mergedAt := pr.GetMergedAt().Time
			if mergedAt.IsZero() || mergedAt.Before(since) {
				continue
			}
			labels, err := f.labelsFor(ctx, pr.GetNumber())
			if err != nil {
				return nil, err
			}
			merged = append(merged, model.PullRequest{
				Number:   pr.GetNumber(),
				Title:    pr.GetTitle(),
				Labels:   labels,
				MergedAt: mergedAt,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	f.logger.Debug("fetched merged pull requests", slog.Int("count", len(merged)))
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].MergedAt.After(merged[j].MergedAt)
	})
	return merged, nil
}

func (f *Fetcher) labelsFor(ctx context.Context, number int) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := f.client.Issues.ListLabelsByIssue(ctx, f.owner, f.repo, number, opts)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrExternalTool, "list labels of #%d: %v", number, err)
		}
		for _, label := range labels {
			names = append(names, label.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}
