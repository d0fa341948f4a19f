package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/config"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the scoring weight presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.printer(cmd.OutOrStdout()).PrintPresets(config.Presets)
		},
	}
}
