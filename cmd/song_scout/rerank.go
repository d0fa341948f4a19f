package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/filter"
	"github.com/jonathan/song-scout/internal/profiling"
	rankpkg "github.com/jonathan/song-scout/internal/ranking"
	"github.com/jonathan/song-scout/internal/schemas"
	"github.com/jonathan/song-scout/internal/types"
	embedded "github.com/jonathan/song-scout/schemas"
)

func newRerankCmd(a *app) *cobra.Command {
	var (
		profilePath string
		resultsPath string
		out         string
		flags       rankFlags
	)

	cmd := &cobra.Command{
		Use:   "rerank",
		Short: "Filter and re-rank saved search results against a song profile",
		Long:  `Reads a profile JSON file and a search results JSON array, keeps playable links and prints the ranked list, or writes it to --out.`,
		Example: `  song_scout rerank --profile profile.json --results results.json --preset rhythm
  song_scout rerank -f profile.json -r results.json --w-genre 1.2 --top-n 20 --out ranked.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := flags.resolve(cmd, a.cfg)
			if err != nil {
				return err
			}

			profileData, err := os.ReadFile(profilePath)
			if err != nil {
				return fmt.Errorf("failed to read profile file %s: %w", profilePath, err)
			}
			profile, err := profiling.ParseProfile(string(profileData))
			if err != nil {
				return err
			}

			results, err := loadResults(resultsPath)
			if err != nil {
				return err
			}

			kept := filter.Apply(results, set.playableOnly, set.allowedDomains)
			ranked := rankpkg.Rerank(profile, kept, set.weights, set.topN)
			if ranked == nil {
				ranked = []types.RankedItem{}
			}

			if out != "" {
				if err := writeJSON(out, ranked); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ranked %d of %d results to %s\n", len(ranked), len(results), out)
				return nil
			}
			a.printer(cmd.OutOrStdout()).PrintRanked(ranked)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "f", "", "Path to a song profile JSON file (required)")
	cmd.Flags().StringVarP(&resultsPath, "results", "r", "", "Path to a search results JSON array (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the ranked JSON to this file")
	flags.register(cmd)
	for _, name := range []string{"profile", "results"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

// loadResults reads a search results file and validates it against the results schema.
func loadResults(path string) ([]types.SearchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file %s: %w", path, err)
	}
	if err := schemas.Validate(embedded.Results, string(data)); err != nil {
		return nil, fmt.Errorf("invalid results file %s: %w", path, err)
	}

	var results []types.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results JSON: %w", err)
	}
	return results, nil
}
