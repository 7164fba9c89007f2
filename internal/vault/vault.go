// Package vault snapshots files into a scratch directory before they are
// mutated and can restore every captured file on rollback.
package vault

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/fwrel/internal/errors"
)

// Vault owns a base scratch directory under which each transaction gets its
// own root. The base is created lazily on first use and left on disk for
// external cleanup.
type Vault struct {
	base   string
	logger *slog.Logger
}

// New creates a Vault rooted at base. An empty base falls back to a
// fwrel directory under the system temp dir. A nil logger uses slog.Default().
func New(base string, logger *slog.Logger) *Vault {
	if base == "" {
		base = filepath.Join(os.TempDir(), "fwrel")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{base: base, logger: logger}
}

// NewTransactionRoot allocates a fresh scratch directory for one transaction.
func (v *Vault) NewTransactionRoot() (string, error) {
	if err := os.MkdirAll(v.base, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrIO, "create scratch base %s: %v", v.base, err)
	}
	root, err := os.MkdirTemp(v.base, "txn-")
	if err != nil {
		return "", errors.Wrapf(errors.ErrIO, "create transaction root: %v", err)
	}
	v.logger.Debug("allocated transaction root", slog.String("root", root))
	return root, nil
}

// Snapshot copies the current content of source into txnRoot, mirroring its
// path relative to repoRoot. Source must be a descendant of repoRoot. Must
// run before the first mutation of that file within the transaction.
func (v *Vault) Snapshot(source, txnRoot, repoRoot string) error {
	rel, err := containedRel(repoRoot, source)
	if err != nil {
		return err
	}

	dst := filepath.Join(txnRoot, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(errors.ErrIO, "create snapshot dir for %s: %v", rel, err)
	}
	if err := copyTree(source, dst); err != nil {
		return errors.Wrapf(errors.ErrIO, "snapshot %s: %v", rel, err)
	}
	v.logger.Debug("snapshotted file", slog.String("file", rel))
	return nil
}

// Restore copies everything under txnRoot back onto repoRoot, overwriting
// files with matching relative paths. Restoration is best-effort: per-file
// failures are collected into the returned diagnostic instead of aborting,
// so a failed rollback never masks the error that triggered it.
func (v *Vault) Restore(txnRoot, repoRoot string) error {
	var diags []error
	walkErr := filepath.WalkDir(txnRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			diags = append(diags, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(txnRoot, path)
		if err != nil {
			diags = append(diags, err)
			return nil
		}
		dst := filepath.Join(repoRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			diags = append(diags, err)
			return nil
		}
		if err := copyTree(path, dst); err != nil {
			diags = append(diags, err)
			return nil
		}
		v.logger.Debug("restored file", slog.String("file", rel))
		return nil
	})
	if walkErr != nil {
		diags = append(diags, walkErr)
	}
	if len(diags) > 0 {
		return errors.Wrapf(errors.ErrIO, "restore incomplete: %v", joinErrs(diags))
	}
	return nil
}

// containedRel resolves source relative to repoRoot, rejecting anything that
// escapes the repository tree.
func containedRel(repoRoot, source string) (string, error) {
	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%s: %v", repoRoot, err)
	}
	absSource, err := filepath.Abs(source)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidPath, "%s: %v", source, err)
	}
	rel, err := filepath.Rel(absRoot, absSource)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(errors.ErrInvalidPath,
			"%s is not inside repository root %s", absSource, absRoot)
	}
	return rel, nil
}

// copyTree copies src to dst. Plain files are expected, but directories are
// copied recursively so a directory source does not break the snapshot.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func joinErrs(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
