package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/queries"
)

func newQueriesCmd(a *app) *cobra.Command {
	var (
		profilePath string
		mode        string
		restrict    bool
	)

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Build web search queries from a song profile",
		Long: `Reads a song profile JSON file and prints one search query per line.
--restrict appends the YouTube site clause; by default it follows the playable-only setting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(profilePath)
			if err != nil {
				return fmt.Errorf("failed to read profile file %s: %w", profilePath, err)
			}
			profile, err := profiling.ParseProfile(string(data))
			if err != nil {
				return err
			}

			m := queries.Mode(a.cfg.Ranking.Mode)
			if cmd.Flags().Changed("mode") {
				if m, err = queries.ParseMode(mode); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("restrict") {
				restrict = queries.ShouldRestrict(a.cfg.PlayableOnly(), a.cfg.Filter.AllowedDomains)
			}

			for _, q := range queries.Build(profile, m, restrict) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), q)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "f", "", "Path to a song profile JSON file (required)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Query mode: strict or loose (default from config)")
	cmd.Flags().BoolVar(&restrict, "restrict", false, "Confine queries to YouTube")
	if err := cmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}
	return cmd
}
