package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/profiling"
)

func newProfileCmd(a *app) *cobra.Command {
	var seed, out string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Generate a structured profile for a seed song",
		Long:  `Asks the configured language model for a song profile and prints it as JSON, or writes it to --out.`,
		Example: `  song_scout profile --seed "Umbra - GoGo Penguin"
  song_scout profile --seed "Take Five - Dave Brubeck (1959)" --out profile.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, closeDeps, err := a.newDeps(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeDeps()

			profile, err := deps.Profiler.Generate(cmd.Context(), seed)
			if err != nil {
				var pf *profiling.ParseFailure
				if errors.As(err, &pf) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Raw model reply:\n%s\n", pf.Raw)
				}
				return err
			}

			if out != "" {
				if err := writeJSON(out, profile); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile written to %s\n", out)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		},
	}

	cmd.Flags().StringVarP(&seed, "seed", "s", "", `Seed song as "Title - Artist (Year)" (required)`)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the profile JSON to this file")
	if err := cmd.MarkFlagRequired("seed"); err != nil {
		panic(fmt.Sprintf("failed to mark seed flag as required: %v", err))
	}
	return cmd
}
