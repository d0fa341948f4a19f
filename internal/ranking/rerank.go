// Package ranking re-ranks search results against a song profile.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/types"
)

const (
	untitled = "(untitled)"
	noHref   = "#"
)

// Rerank scores every result against the profile, sorts by descending score and keeps the top N.
// Ties keep their input order. Neither the profile nor the results are modified.
func Rerank(profile *types.Profile, results []types.SearchResult, weights types.Weights, topN int) []types.RankedItem {
	if topN <= 0 || len(results) == 0 {
		return []types.RankedItem{}
	}

	norm := profiling.Normalize(profile)

	ranked := make([]types.RankedItem, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, scoreResult(norm, r, weights))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Contributions computes the per-factor contributions for a single result.
func Contributions(norm profiling.Normalized, r types.SearchResult, w types.Weights) map[types.Factor]float64 {
	text := haystack(r)

	c := make(map[types.Factor]float64, len(types.Factors()))
	c[types.FactorGenre] = float64(countHits(norm.Tags, text)) * w.Genre
	c[types.FactorInst] = float64(countHits(norm.Instruments, text)) * w.Inst
	c[types.FactorRhythm] = presence(norm.Rhythm, text, w.Rhythm)
	c[types.FactorTimeSig] = presence(norm.TimeSignature, text, w.TimeSig)
	c[types.FactorInfluence] = bestInfluence(norm.Influence, text) / 100 * w.Influence
	c[types.FactorDomain] = DomainBonus(text, w.Domain)
	return c
}

func scoreResult(norm profiling.Normalized, r types.SearchResult, w types.Weights) types.RankedItem {
	contrib := Contributions(norm, r, w)

	total := 0.0
	why := make(map[string]float64, len(contrib))
	for _, f := range types.Factors() {
		total += contrib[f]
		why[f.Label()] = contrib[f]
	}

	item := types.RankedItem{
		Score: round3(total),
		Why:   why,
		Title: r.Title,
		Href:  r.Href,
		Body:  r.Body,
	}
	if item.Title == "" {
		item.Title = untitled
	}
	if item.Href == "" {
		item.Href = noHref
	}
	return item
}

// haystack is the lower-cased text a result is matched against.
func haystack(r types.SearchResult) string {
	return strings.ToLower(r.Title + " " + r.Body + " " + r.Href)
}

func countHits(terms []string, text string) int {
	hits := 0
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			hits++
		}
	}
	return hits
}

func presence(term, text string, weight float64) float64 {
	if term != "" && strings.Contains(text, term) {
		return weight
	}
	return 0
}

func bestInfluence(terms []string, text string) float64 {
	best := 0.0
	for _, t := range terms {
		best = max(best, TokenSetRatio(t, text))
	}
	return best
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
