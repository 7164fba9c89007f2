// Package lines loads a file as an ordered sequence of text lines and
// serializes the sequence back, one edit session per file.
package lines

import (
	"os"
	"strings"

	"github.com/sokinpui/fwrel/internal/errors"
)

// EditFunc transforms a line sequence in one edit session. It returns the
// sequence to persist; mutating the input and returning it is fine.
type EditFunc func(lines []string) ([]string, error)

// Load reads the file at path and splits it on newline boundaries. Both bare
// LF and CRLF endings are accepted. A trailing newline does not produce a
// final empty entry.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "read %s: %v", path, err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	seq := strings.Split(content, "\n")
	if n := len(seq); n > 0 && seq[n-1] == "" {
		seq = seq[:n-1]
	}
	return seq, nil
}

// Save joins the sequence with single newlines, adding no trailing newline
// of its own, and overwrites path with the result.
func Save(path string, seq []string) error {
	content := strings.Join(seq, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s: %v", path, err)
	}
	return nil
}

// Transform runs one load-edit-save session against path. The file is only
// written if fn succeeds; an edit error leaves it untouched.
func Transform(path string, fn EditFunc) error {
	seq, err := Load(path)
	if err != nil {
		return err
	}
	seq, err = fn(seq)
	if err != nil {
		return err
	}
	return Save(path, seq)
}
