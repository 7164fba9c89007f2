// Package patch applies an ordered list of regex-driven file edits as one
// transaction: every file is snapshotted before mutation and a failure
// anywhere restores all of them.
package patch

import (
	"log/slog"
	"path/filepath"

	"github.com/sokinpui/fwrel/internal/errors"
	"github.com/sokinpui/fwrel/internal/lines"
	"github.com/sokinpui/fwrel/internal/vault"
)

// Step is one edit applied to a file's line sequence. It returns the edited
// sequence and whether its pattern matched; a non-match is converted by the
// transaction into a format mismatch error.
type Step struct {
	// Desc names the expected line shape for error messages.
	Desc  string
	Apply func(seq []string) ([]string, bool, error)
}

// FileEdit pairs a file path, relative to the repository root, with the
// ordered steps to run against it.
type FileEdit struct {
	Path  string
	Steps []Step
}

// Plan is one logical change across several files. Edits run in order; every
// step must succeed or the whole plan fails.
type Plan struct {
	Edits []FileEdit
}

// State tracks a transaction through its lifecycle. The phases before
// patching (idle, release branch created) happen in the caller before Begin;
// a Transaction only exists once file mutation is about to start.
type State int

const (
	StatePatching State = iota
	StateCommitted
	StateRollingBack
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePatching:
		return "patching"
	case StateCommitted:
		return "committed"
	case StateRollingBack:
		return "rolling-back"
	case StateRolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// ProgressFunc reports how many files of the plan have been patched.
type ProgressFunc func(current, total int)

// Transaction is one in-flight application of a Plan.
type Transaction struct {
	vault    *vault.Vault
	repoRoot string
	txnRoot  string
	state    State
	logger   *slog.Logger
}

// Begin allocates a transaction root under the vault and opens a transaction
// against repoRoot.
func Begin(v *vault.Vault, repoRoot string, logger *slog.Logger) (*Transaction, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := v.NewTransactionRoot()
	if err != nil {
		return nil, err
	}
	return &Transaction{
		vault:    v,
		repoRoot: repoRoot,
		txnRoot:  root,
		state:    StatePatching,
		logger:   logger,
	}, nil
}

// State returns the transaction's current lifecycle state.
func (t *Transaction) State() State {
	return t.state
}

// Root returns the transaction's scratch directory. On success it is left on
// disk so the operator can inspect what was captured.
func (t *Transaction) Root() string {
	return t.txnRoot
}

// Apply runs the plan. Each file is snapshotted first, then all of its steps
// are applied to the in-memory line sequence and the file is written once,
// only if every step matched. The first error aborts the plan; the caller is
// expected to Rollback.
func (t *Transaction) Apply(plan Plan, progress ProgressFunc) error {
	total := len(plan.Edits)
	for i, edit := range plan.Edits {
		if err := t.applyFile(edit); err != nil {
			return err
		}
		t.logger.Debug("patched file", slog.String("file", edit.Path))
		if progress != nil {
			progress(i+1, total)
		}
	}
	t.state = StateCommitted
	return nil
}

func (t *Transaction) applyFile(edit FileEdit) error {
	abs := filepath.Join(t.repoRoot, edit.Path)
	if err := t.vault.Snapshot(abs, t.txnRoot, t.repoRoot); err != nil {
		return err
	}
	return lines.Transform(abs, func(seq []string) ([]string, error) {
		for _, step := range edit.Steps {
			next, matched, err := step.Apply(seq)
			if err != nil {
				return nil, err
			}
			if !matched {
				return nil, &errors.FormatError{File: edit.Path, Want: step.Desc}
			}
			seq = next
		}
		return seq, nil
	})
}

// Rollback restores every snapshot captured so far. The returned error is a
// diagnostic only: rollback is best-effort and the caller should log it
// rather than surface it in place of the original failure.
func (t *Transaction) Rollback() error {
	t.state = StateRollingBack
	err := t.vault.Restore(t.txnRoot, t.repoRoot)
	t.state = StateRolledBack
	if err != nil {
		t.logger.Warn("rollback incomplete", slog.String("error", err.Error()))
	}
	return err
}
