package config

import (
	"fmt"
	"strings"

	"github.com/jonathan/song-scout/internal/types"
)

// Preset names.
const (
	PresetBalanced   = "balanced"
	PresetGenre      = "genre"
	PresetInstrument = "instrument"
	PresetRhythm     = "rhythm"
)

// Preset is a named starting point for the scoring weights.
type Preset struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Weights     types.Weights `json:"weights"`
}

// Presets lists the weight presets in display order.
var Presets = []Preset{
	{
		Name:        PresetBalanced,
		Description: "every factor counts, genre slightly ahead",
		Weights:     types.Weights{Genre: 0.6, Inst: 0.5, Rhythm: 0.5, TimeSig: 0.4, Influence: 0.4, Domain: 0.3},
	},
	{
		Name:        PresetGenre,
		Description: "favour results that share the style tags",
		Weights:     types.Weights{Genre: 1.0, Inst: 0.4, Rhythm: 0.3, TimeSig: 0.2, Influence: 0.3, Domain: 0.3},
	},
	{
		Name:        PresetInstrument,
		Description: "favour results that share the instrumentation",
		Weights:     types.Weights{Genre: 0.4, Inst: 1.0, Rhythm: 0.3, TimeSig: 0.2, Influence: 0.3, Domain: 0.3},
	},
	{
		Name:        PresetRhythm,
		Description: "favour results that share rhythm feel and metre",
		Weights:     types.Weights{Genre: 0.4, Inst: 0.4, Rhythm: 1.0, TimeSig: 0.8, Influence: 0.3, Domain: 0.3},
	},
}

// presetAliases maps alternative spellings, including the Chinese UI names, to preset names.
var presetAliases = map[string]string{
	"":            PresetBalanced,
	"均衡":          PresetBalanced,
	"style":       PresetGenre,
	"偏风格":         PresetGenre,
	"instruments": PresetInstrument,
	"偏乐器":         PresetInstrument,
	"timesig":     PresetRhythm,
	"偏节奏":         PresetRhythm,
	"偏节奏/拍号":      PresetRhythm,
}

// PresetWeights returns the weights of a preset by name or alias.
func PresetWeights(name string) (types.Weights, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := presetAliases[key]; ok {
		key = alias
	}
	for _, p := range Presets {
		if p.Name == key {
			return p.Weights, nil
		}
	}
	return types.Weights{}, fmt.Errorf("unknown preset %q (choose one of %s)", name, strings.Join(PresetNames(), ", "))
}

// PresetNames returns the canonical preset names in display order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for _, p := range Presets {
		names = append(names, p.Name)
	}
	return names
}
