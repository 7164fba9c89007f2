// Package ui prints styled, user-facing messages to stderr.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/fwrel/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func Header(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, headerStyle.Render(fmt.Sprintf(format, a...)))
}

func Success(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, successStyle.Render(fmt.Sprintf(format, a...)))
}

func Warning(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, warningStyle.Render(fmt.Sprintf(format, a...)))
}

func Error(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf(format, a...)))
}

// PrintReleaseSummary reports the outcome of a release initiation.
func PrintReleaseSummary(summary model.Summary) {
	Header("--- Release Summary ---")
	if summary.Branch != "" {
		Success("Checked out branch %s", summary.Branch)
	}
	if len(summary.Patched) > 0 {
		Success("Patched %d file(s):", len(summary.Patched))
		for _, f := range summary.Patched {
			fmt.Fprintf(os.Stderr, "  - %s\n", f)
		}
	}
	if summary.Message != "" {
		fmt.Fprintln(os.Stderr, faintStyle.Render(summary.Message))
	}
}
