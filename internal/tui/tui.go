// Package tui shows a spinner and per-file progress while a release
// operation runs.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/fwrel/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// Task is the operation the TUI supervises. It reports per-file progress
// through the callback.
type Task func(progress func(current, total int)) (model.Summary, error)

type progressMsg struct{ current, total int }

type doneMsg struct{ summary model.Summary }

type errMsg struct{ err error }

type state int

const (
	stateRunning state = iota
	stateDone
	stateFailed
)

// Model drives one task to completion.
type Model struct {
	label   string
	task    Task
	msgs    chan tea.Msg
	spinner spinner.Model
	state   state
	current int
	total   int
	summary model.Summary
	err     error
}

// New creates a Model for one task run.
func New(label string, task Task) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		label:   label,
		task:    task,
		msgs:    make(chan tea.Msg, 8),
		spinner: s,
	}
}

// Err returns the task error, if any, after the program has finished.
func (m Model) Err() error { return m.err }

// Summary returns the task result after the program has finished.
func (m Model) Summary() model.Summary { return m.summary }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start, m.wait)
}

// start runs the task in the background and feeds its outcome through the
// message channel.
func (m Model) start() tea.Msg {
	go func() {
		summary, err := m.task(func(current, total int) {
			m.msgs <- progressMsg{current: current, total: total}
		})
		if err != nil {
			m.msgs <- errMsg{err: err}
			return
		}
		m.msgs <- doneMsg{summary: summary}
	}()
	return nil
}

// wait relays the next background message into the program.
func (m Model) wait() tea.Msg {
	return <-m.msgs
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// The task keeps running in its goroutine regardless, and an
			// exit between file writes would leave a half-applied plan with
			// nobody left to roll it back. Quit keys are ignored until the
			// outcome message arrives; done and error quit on their own.
			if m.state == stateRunning {
				return m, nil
			}
			return m, tea.Quit
		}

	case progressMsg:
		m.current, m.total = msg.current, msg.total
		return m, m.wait

	case doneMsg:
		m.state = stateDone
		m.summary = msg.summary
		return m, tea.Quit

	case errMsg:
		m.state = stateFailed
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateRunning {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateRunning:
		if m.total > 0 {
			return fmt.Sprintf("%s %s [%d/%d]", m.spinner.View(), m.label, m.current, m.total)
		}
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	case stateFailed:
		return errStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateDone:
		return m.renderSummary()
	}
	return ""
}

func (m Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("--- Release Summary ---"))
	b.WriteString("\n")
	if m.summary.Branch != "" {
		b.WriteString(okStyle.Render("Checked out branch " + m.summary.Branch))
		b.WriteString("\n")
	}
	if len(m.summary.Patched) > 0 {
		b.WriteString(okStyle.Render(fmt.Sprintf("Patched %d file(s):", len(m.summary.Patched))))
		b.WriteString("\n")
		for _, f := range m.summary.Patched {
			b.WriteString("  - " + f + "\n")
		}
	}
	if m.summary.Message != "" {
		b.WriteString(faintStyle.Render(m.summary.Message))
		b.WriteString("\n")
	}
	return b.String()
}

// Run executes task under the TUI and returns its outcome.
func Run(label string, task Task) (model.Summary, error) {
	final, err := tea.NewProgram(New(label, task)).Run()
	if err != nil {
		return model.Summary{}, err
	}
	m := final.(Model)
	return m.Summary(), m.Err()
}
