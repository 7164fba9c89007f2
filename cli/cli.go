// Package cli holds the flag-backed configuration shared by the fwrel
// commands.
package cli

import "github.com/spf13/pflag"

// Config holds all the command-line flag values.
type Config struct {
	// GitHub API token for changelog generation.
	Token string
	// Copy the generated changelog section to the clipboard.
	Copy bool
	// Print the changelog section instead of editing CHANGELOG.md.
	Stdout bool
	// Disable the spinner and progress display.
	NoAnimation bool
	// Enable debug logging.
	Verbose bool
}

// RegisterGlobalFlags defines the flags every subcommand accepts.
func RegisterGlobalFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable loading spinner and progress updates.")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging.")
}

// RegisterChangelogFlags defines the flags of the changelog subcommand.
func RegisterChangelogFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Token, "token", "t", "", "GitHub API token (defaults to $GITHUB_TOKEN).")
	fs.BoolVarP(&cfg.Copy, "copy", "c", false, "Copy the generated section to the clipboard.")
	fs.BoolVar(&cfg.Stdout, "stdout", false, "Print the section to stdout instead of editing the changelog file.")
}
