// Package errors defines the error taxonomy shared by every fwrel component.
//
// Sentinel values support errors.Is checks across package boundaries; the
// typed errors carry the detail needed for a useful top-level message.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is.
var (
	// ErrValidation indicates a malformed or out-of-order version number.
	ErrValidation = errors.New("invalid version")

	// ErrConflict indicates the repository is in a state that prevents
	// starting a release: detached HEAD or an already existing branch.
	ErrConflict = errors.New("repository state conflict")

	// ErrFormatMismatch indicates an expected line pattern was not found
	// in a target file.
	ErrFormatMismatch = errors.New("unexpected file format")

	// ErrParse indicates a captured counter value is not a valid integer.
	ErrParse = errors.New("value is not numeric")

	// ErrInvalidPath indicates a snapshot source escapes the repository root.
	ErrInvalidPath = errors.New("path outside repository root")

	// ErrIO indicates a filesystem read or write failure.
	ErrIO = errors.New("file i/o failed")

	// ErrExternalTool indicates a delegated command exited non-zero.
	ErrExternalTool = errors.New("external tool failed")
)

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GitError represents a failed git invocation. It captures the subcommand,
// its arguments and whatever the command printed to stderr.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Stderr    string
}

// Error implements the error interface with a detailed message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, stderr string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Stderr:    stderr,
	}
}

// FormatError reports which pattern failed to match in which target file.
type FormatError struct {
	File string
	Want string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: no line matching %s: %v", e.File, e.Want, ErrFormatMismatch)
}

// Unwrap makes FormatError match ErrFormatMismatch under errors.Is.
func (e *FormatError) Unwrap() error {
	return ErrFormatMismatch
}
