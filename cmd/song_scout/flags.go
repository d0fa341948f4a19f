package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/filter"
	"github.com/jonathan/song-scout/internal/queries"
	"github.com/jonathan/song-scout/internal/types"
)

// rankFlags are the ranking settings shared by rerank and search.
type rankFlags struct {
	preset       string
	genre        float64
	inst         float64
	rhythm       float64
	timeSig      float64
	influence    float64
	domain       float64
	topN         int
	mode         string
	playableOnly bool
	domains      []string
}

func (f *rankFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.preset, "preset", "p", "", "Weight preset: balanced, genre, instrument, rhythm (default from config)")
	fs.Float64Var(&f.genre, "w-genre", 0, "Genre/style weight (0-1.5)")
	fs.Float64Var(&f.inst, "w-inst", 0, "Instrument weight (0-1.5)")
	fs.Float64Var(&f.rhythm, "w-rhythm", 0, "Rhythm weight (0-1.5)")
	fs.Float64Var(&f.timeSig, "w-timesig", 0, "Time signature weight (0-1.5)")
	fs.Float64Var(&f.influence, "w-influence", 0, "Influence weight (0-1.5)")
	fs.Float64Var(&f.domain, "w-domain", 0, "Site priority weight (0-1)")
	fs.IntVarP(&f.topN, "top-n", "n", 0, "Number of ranked results, 5-30 (default from config)")
	fs.StringVarP(&f.mode, "mode", "m", "", "Query mode: strict or loose (default from config)")
	fs.BoolVar(&f.playableOnly, "playable-only", true, "Keep only links on playable domains")
	fs.StringSliceVar(&f.domains, "domains", nil, "Playable domains to allow (default from config)")
}

// ranking holds the settings after merging flags over the configuration.
type ranking struct {
	weights        types.Weights
	topN           int
	mode           queries.Mode
	playableOnly   bool
	allowedDomains []string
}

// resolve merges the flags that were set over cfg. Only flags given on the
// command line override the configuration.
func (f *rankFlags) resolve(cmd *cobra.Command, cfg *config.Config) (ranking, error) {
	fs := cmd.Flags()

	var base types.Weights
	var err error
	if fs.Changed("preset") {
		base, err = config.PresetWeights(f.preset)
	} else {
		base, err = cfg.Weights()
	}
	if err != nil {
		return ranking{}, err
	}

	var o types.WeightOverrides
	for name, dst := range map[string]**float64{
		"w-genre":     &o.Genre,
		"w-inst":      &o.Inst,
		"w-rhythm":    &o.Rhythm,
		"w-timesig":   &o.TimeSig,
		"w-influence": &o.Influence,
		"w-domain":    &o.Domain,
	} {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetFloat64(name)
		if err != nil {
			return ranking{}, fmt.Errorf("--%s: %w", name, err)
		}
		*dst = &v
	}
	weights := o.Apply(base)
	if err := weights.Validate(); err != nil {
		return ranking{}, fmt.Errorf("weights out of range: %w", err)
	}

	r := ranking{
		weights:        weights,
		topN:           cfg.Ranking.TopN,
		mode:           queries.Mode(cfg.Ranking.Mode),
		playableOnly:   cfg.PlayableOnly(),
		allowedDomains: cfg.Filter.AllowedDomains,
	}
	if fs.Changed("top-n") {
		if f.topN < 5 || f.topN > 30 {
			return ranking{}, fmt.Errorf("--top-n must be between 5 and 30, got %d", f.topN)
		}
		r.topN = f.topN
	}
	if fs.Changed("mode") {
		mode, err := queries.ParseMode(f.mode)
		if err != nil {
			return ranking{}, err
		}
		r.mode = mode
	}
	if fs.Changed("playable-only") {
		r.playableOnly = f.playableOnly
	}
	if fs.Changed("domains") {
		for _, d := range f.domains {
			if !filter.IsKnownDomain(d) {
				return ranking{}, fmt.Errorf("unknown playable domain %q", d)
			}
		}
		r.allowedDomains = f.domains
	}
	return r, nil
}

// writeJSON writes v as indented JSON to path, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
