package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/sokinpui/fwrel/internal/errors"
)

// CommandExecutor runs git commands. It exists so tests can substitute a
// canned implementation.
type CommandExecutor interface {
	// ExecuteWithOutput runs a command and returns its trimmed stdout.
	ExecuteWithOutput(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// ExecuteWithOutput implements CommandExecutor.
func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		operation := ""
		var args []string
		if len(cmd.Args) > 1 {
			operation = cmd.Args[1]
			args = cmd.Args[2:]
		}
		wrapped := errors.Wrap(errors.ErrExternalTool, err.Error())
		return "", errors.NewGitError(operation, args, wrapped, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
