package model

import "time"

// Summary holds the results of a release operation for display.
type Summary struct {
	Branch  string
	Patched []string
	Message string
}

// PullRequest is one merged pull request considered for the changelog.
type PullRequest struct {
	Number   int
	Title    string
	Labels   []string
	MergedAt time.Time
}

// VersionInfo is the result of the show-version query.
type VersionInfo struct {
	Version string
	ID      string
	Packed  string
}
