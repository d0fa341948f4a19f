package profiling

import (
	"strings"

	"github.com/jonathan/song-scout/internal/types"
)

// Normalized holds the lower-cased profile fields the scorer matches against result text.
type Normalized struct {
	Tags          []string
	Instruments   []string
	Rhythm        string
	TimeSignature string
	// Influence is similar artists followed by evidence terms
	Influence []string
}

// Normalize extracts and lower-cases the scoring fields of a profile.
// Tags and instruments are de-duplicated since each distinct term counts once.
func Normalize(p *types.Profile) Normalized {
	if p == nil {
		return Normalized{}
	}

	influence := lowerAll(p.SimilarArtists, false)
	influence = append(influence, lowerAll(p.EvidenceTerms, false)...)

	return Normalized{
		Tags:          lowerAll(p.Tags, true),
		Instruments:   lowerAll(p.Instruments, true),
		Rhythm:        normalizeTerm(p.Rhythm.String()),
		TimeSignature: normalizeTerm(p.TimeSignature.String()),
		Influence:     influence,
	}
}

// lowerAll lower-cases and trims terms, dropping blanks and optionally duplicates.
func lowerAll(terms []string, unique bool) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		n := normalizeTerm(term)
		if n == "" {
			continue
		}
		if unique {
			if seen[n] {
				continue
			}
			seen[n] = true
		}
		out = append(out, n)
	}
	return out
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
