package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeights_Validation(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{
			name:    "all zero",
			weights: Weights{},
		},
		{
			name:    "upper bounds",
			weights: Weights{Genre: 1.5, Inst: 1.5, Rhythm: 1.5, TimeSig: 1.5, Influence: 1.5, Domain: 1.0},
		},
		{
			name:    "negative weight",
			weights: Weights{Genre: -0.1},
			wantErr: true,
		},
		{
			name:    "content weight too large",
			weights: Weights{Influence: 1.6},
			wantErr: true,
		},
		{
			name:    "domain weight too large",
			weights: Weights{Domain: 1.2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeightOverrides_Apply(t *testing.T) {
	base := Weights{Genre: 0.6, Inst: 0.5, Rhythm: 0.5, TimeSig: 0.4, Influence: 0.4, Domain: 0.3}
	genre := 1.2
	domain := 0.0

	got := WeightOverrides{Genre: &genre, Domain: &domain}.Apply(base)

	assert.Equal(t, 1.2, got.Genre)
	assert.Equal(t, 0.0, got.Domain)
	assert.Equal(t, 0.5, got.Inst)
	// base is passed by value and stays untouched
	assert.Equal(t, 0.6, base.Genre)
}

func TestFactors_LabelsAndWeights(t *testing.T) {
	w := Weights{Genre: 1, Inst: 2, Rhythm: 3, TimeSig: 4, Influence: 5, Domain: 0.5}

	labels := make(map[string]bool)
	for _, f := range Factors() {
		labels[f.Label()] = true
	}
	assert.Len(t, labels, 6)

	assert.Equal(t, 3.0, w.Get(FactorRhythm))
	assert.Equal(t, 0.5, w.Get(FactorDomain))
	assert.Equal(t, 0.0, w.Get(Factor("unknown")))
	assert.Equal(t, "Time signature", FactorTimeSig.Label())
}
