package types

import (
	"github.com/go-playground/validator/v10"
)

// Weights maps each scoring factor to a non-negative multiplier.
// Bounds mirror the adjustable ranges offered to users.
type Weights struct {
	Genre     float64 `json:"genre" yaml:"genre" validate:"gte=0,lte=1.5"`
	Inst      float64 `json:"inst" yaml:"inst" validate:"gte=0,lte=1.5"`
	Rhythm    float64 `json:"rhythm" yaml:"rhythm" validate:"gte=0,lte=1.5"`
	TimeSig   float64 `json:"timesig" yaml:"timesig" validate:"gte=0,lte=1.5"`
	Influence float64 `json:"influence" yaml:"influence" validate:"gte=0,lte=1.5"`
	Domain    float64 `json:"domain" yaml:"domain" validate:"gte=0,lte=1"`
}

// Validate validates the weights using the validator.
func (w Weights) Validate() error {
	validate := validator.New()
	return validate.Struct(w)
}

// Get returns the weight for a factor.
func (w Weights) Get(f Factor) float64 {
	switch f {
	case FactorGenre:
		return w.Genre
	case FactorInst:
		return w.Inst
	case FactorRhythm:
		return w.Rhythm
	case FactorTimeSig:
		return w.TimeSig
	case FactorInfluence:
		return w.Influence
	case FactorDomain:
		return w.Domain
	default:
		return 0
	}
}

// WeightOverrides carries user adjustments applied on top of a preset.
// A nil field keeps the preset value.
type WeightOverrides struct {
	Genre     *float64 `json:"genre,omitempty" yaml:"genre,omitempty"`
	Inst      *float64 `json:"inst,omitempty" yaml:"inst,omitempty"`
	Rhythm    *float64 `json:"rhythm,omitempty" yaml:"rhythm,omitempty"`
	TimeSig   *float64 `json:"timesig,omitempty" yaml:"timesig,omitempty"`
	Influence *float64 `json:"influence,omitempty" yaml:"influence,omitempty"`
	Domain    *float64 `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Apply returns a copy of base with every non-nil override set.
func (o WeightOverrides) Apply(base Weights) Weights {
	if o.Genre != nil {
		base.Genre = *o.Genre
	}
	if o.Inst != nil {
		base.Inst = *o.Inst
	}
	if o.Rhythm != nil {
		base.Rhythm = *o.Rhythm
	}
	if o.TimeSig != nil {
		base.TimeSig = *o.TimeSig
	}
	if o.Influence != nil {
		base.Influence = *o.Influence
	}
	if o.Domain != nil {
		base.Domain = *o.Domain
	}
	return base
}

// Factor identifies one component of the relevance score.
type Factor string

// Factor constants in display order
const (
	FactorGenre     Factor = "genre"
	FactorInst      Factor = "inst"
	FactorRhythm    Factor = "rhythm"
	FactorTimeSig   Factor = "timesig"
	FactorInfluence Factor = "influence"
	FactorDomain    Factor = "domain"
)

// Factors returns all factors in display order.
func Factors() []Factor {
	return []Factor{FactorGenre, FactorInst, FactorRhythm, FactorTimeSig, FactorInfluence, FactorDomain}
}

// Label returns the human-readable name used as the explanation key.
func (f Factor) Label() string {
	switch f {
	case FactorGenre:
		return "Genre"
	case FactorInst:
		return "Instruments"
	case FactorRhythm:
		return "Rhythm"
	case FactorTimeSig:
		return "Time signature"
	case FactorInfluence:
		return "Influence"
	case FactorDomain:
		return "Site"
	default:
		return string(f)
	}
}
