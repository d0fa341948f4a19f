package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/song-scout/internal/pipeline"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		seed    string
		out     string
		verbose bool
		flags   rankFlags
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run the full pipeline for a seed song",
		Long: `Profiles the seed with the language model, builds queries, searches the configured
backend, keeps playable links and prints the ranked results, or writes the full report to --out.`,
		Example: `  song_scout search --seed "Umbra - GoGo Penguin"
  song_scout search --seed "Take Five - Dave Brubeck" --preset rhythm --mode loose --top-n 20
  song_scout search --seed "Umbra - GoGo Penguin" --playable-only=false --out report.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := flags.resolve(cmd, a.cfg)
			if err != nil {
				return err
			}

			deps, closeDeps, err := a.newDeps(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			defer closeDeps()

			opts := pipeline.Options{
				Seed:           seed,
				Weights:        set.weights,
				TopN:           set.topN,
				Mode:           set.mode,
				PlayableOnly:   set.playableOnly,
				AllowedDomains: set.allowedDomains,
			}
			if verbose {
				opts.OnProgress = func(e pipeline.ProgressEvent) {
					a.log.Info(e.Message, zap.String("step", e.Step), zap.Int("position", e.Position), zap.Int("total", e.Total))
				}
			}

			report, err := pipeline.Run(cmd.Context(), deps, opts)
			if err != nil {
				return err
			}

			if out != "" {
				if err := writeJSON(out, report); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report with %d ranked results written to %s\n", len(report.Ranked), out)
				return nil
			}
			a.printer(cmd.OutOrStdout()).PrintReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&seed, "seed", "s", "", `Seed song as "Title - Artist (Year)" (required)`)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report JSON to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each pipeline step")
	flags.register(cmd)
	if err := cmd.MarkFlagRequired("seed"); err != nil {
		panic(fmt.Sprintf("failed to mark seed flag as required: %v", err))
	}
	return cmd
}
