package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sokinpui/fwrel/cli"
	"github.com/sokinpui/fwrel/fwrel"
)

func newShowCmd(cfg *cli.Config) *cobra.Command {
	show := &cobra.Command{
		Use:   "show",
		Short: "Query release state",
	}
	show.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current firmware version and its tag encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fwrel.New(cfg)
			if err != nil {
				return err
			}
			info, err := app.ShowVersion()
			if err != nil {
				return err
			}
			fmt.Printf("%s (id %s, packed %s)\n", info.Version, info.ID, info.Packed)
			return nil
		},
	})
	return show
}
