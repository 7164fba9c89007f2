package main

import (
	"github.com/spf13/cobra"

	"github.com/sokinpui/fwrel/cli"
	"github.com/sokinpui/fwrel/fwrel"
	"github.com/sokinpui/fwrel/internal/tui"
	"github.com/sokinpui/fwrel/internal/ui"
	"github.com/sokinpui/fwrel/model"
)

func newInitCmd(cfg *cli.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init <version>",
		Short: "Branch the repository and bump every version file",
		Long: "Creates a release branch for the given version and patches the build\n" +
			"script, build metadata, module version registry and system header in one\n" +
			"transaction. Any failure restores every file and the original branch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fwrel.New(cfg)
			if err != nil {
				return err
			}

			if cfg.NoAnimation {
				summary, err := app.InitRelease(args[0], nil)
				if err != nil {
					return err
				}
				ui.PrintReleaseSummary(summary)
				return nil
			}

			_, err = tui.Run("Patching release files...", func(progress func(int, int)) (model.Summary, error) {
				return app.InitRelease(args[0], progress)
			})
			return err
		},
	}
}
