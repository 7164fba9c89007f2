// Package changelog turns the merged pull requests since the previous
// release into a markdown section and places it into CHANGELOG.md.
package changelog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sokinpui/fwrel/internal/config"
	"github.com/sokinpui/fwrel/model"
)

// Render builds the markdown section for one release: merged PRs grouped
// into Features, Fixes and Other by their labels.
func Render(version string, date time.Time, prs []model.PullRequest, labels config.Labels) string {
	var features, fixes, other []model.PullRequest
	for _, pr := range prs {
		switch {
		case hasAnyLabel(pr, labels.Features):
			features = append(features, pr)
		case hasAnyLabel(pr, labels.Fixes):
			fixes = append(fixes, pr)
		default:
			other = append(other, pr)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## v%s - %s\n", version, date.Format("2006-01-02"))
	writeGroup(&b, "Features", features)
	writeGroup(&b, "Fixes", fixes)
	writeGroup(&b, "Other", other)
	return b.String()
}

func writeGroup(b *strings.Builder, title string, prs []model.PullRequest) {
	if len(prs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", title)
	for _, pr := range prs {
		fmt.Fprintf(b, "- %s (#%d)\n", pr.Title, pr.Number)
	}
}

func hasAnyLabel(pr model.PullRequest, names []string) bool {
	for _, label := range pr.Labels {
		if slices.Contains(names, label) {
			return true
		}
	}
	return false
}
