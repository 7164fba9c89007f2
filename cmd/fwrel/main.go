package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sokinpui/fwrel/cli"
	"github.com/sokinpui/fwrel/internal/ui"
)

func main() {
	cfg := &cli.Config{}

	root := &cobra.Command{
		Use:           "fwrel",
		Short:         "Firmware release bookkeeping: version bumps, release branches, changelogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.RegisterGlobalFlags(root.PersistentFlags(), cfg)
	root.AddCommand(
		newInitCmd(cfg),
		newChangelogCmd(cfg),
		newShowCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		ui.Error("Error: %v", err)
		os.Exit(1)
	}
}
