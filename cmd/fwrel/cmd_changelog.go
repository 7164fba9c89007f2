package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/sokinpui/fwrel/cli"
	"github.com/sokinpui/fwrel/fwrel"
	"github.com/sokinpui/fwrel/internal/ui"
)

func newChangelogCmd(cfg *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Generate a changelog section from merged pull requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fwrel.New(cfg)
			if err != nil {
				return err
			}
			section, err := app.Changelog(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.Copy {
				if err := clipboard.WriteAll(section); err != nil {
					ui.Warning("Could not copy to clipboard: %v", err)
				} else {
					ui.Success("Copied changelog section to clipboard")
				}
			}
			if cfg.Stdout {
				fmt.Print(section)
				return nil
			}
			return app.WriteChangelog(section)
		},
	}
	cli.RegisterChangelogFlags(cmd.Flags(), cfg)
	return cmd
}
