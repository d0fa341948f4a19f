package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetWeights(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, genre, inst, rhythm, timesig float64)
	}{
		{name: "balanced", check: func(t *testing.T, g, i, r, ts float64) {
			assert.Equal(t, []float64{0.6, 0.5, 0.5, 0.4}, []float64{g, i, r, ts})
		}},
		{name: "Genre", check: func(t *testing.T, g, _, _, _ float64) { assert.Equal(t, 1.0, g) }},
		{name: "偏乐器", check: func(t *testing.T, _, i, _, _ float64) { assert.Equal(t, 1.0, i) }},
		{name: "偏节奏/拍号", check: func(t *testing.T, _, _, r, ts float64) {
			assert.Equal(t, 1.0, r)
			assert.Equal(t, 0.8, ts)
		}},
		{name: "", check: func(t *testing.T, g, _, _, _ float64) { assert.Equal(t, 0.6, g) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := PresetWeights(tt.name)
			require.NoError(t, err)
			tt.check(t, w.Genre, w.Inst, w.Rhythm, w.TimeSig)
		})
	}
}

func TestPresetWeights_Unknown(t *testing.T) {
	_, err := PresetWeights("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balanced, genre, instrument, rhythm")
}

func TestPresets_WithinBounds(t *testing.T) {
	for _, p := range Presets {
		assert.NoError(t, p.Weights.Validate(), p.Name)
	}
}
