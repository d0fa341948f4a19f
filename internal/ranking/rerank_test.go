package ranking

import (
	"fmt"
	"testing"

	"github.com/jonathan/song-scout/internal/profiling"
	"github.com/jonathan/song-scout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balanced() types.Weights {
	return types.Weights{Genre: 0.6, Inst: 0.5, Rhythm: 0.5, TimeSig: 0.4, Influence: 0.4, Domain: 0.3}
}

func jazzProfile() *types.Profile {
	return &types.Profile{
		Artist:         "GoGo Penguin",
		Title:          "Umbra",
		Tags:           types.StringList{"Fusion", "jazz", "fusion"},
		Instruments:    types.StringList{"piano", "double bass"},
		Rhythm:         "Syncopation",
		TimeSignature:  "7/8",
		SimilarArtists: types.StringList{"Portico Quartet"},
		EvidenceTerms:  types.StringList{"acoustic electronica"},
	}
}

func TestRerank_GenreOnlyScenario(t *testing.T) {
	profile := &types.Profile{Tags: types.StringList{"fusion", "jazz"}}
	results := []types.SearchResult{
		{Title: "Live set", Body: "fusion jazz band", Href: "https://bandcamp.com/x"},
	}

	ranked := Rerank(profile, results, types.Weights{Genre: 0.6}, 10)

	require.Len(t, ranked, 1)
	assert.InDelta(t, 1.2, ranked[0].Score, 1e-9)
	assert.InDelta(t, 1.2, ranked[0].Why[types.FactorGenre.Label()], 1e-9)
	for _, f := range types.Factors()[1:] {
		assert.Equal(t, 0.0, ranked[0].Why[f.Label()], f.Label())
	}
}

func TestRerank_EmptyProfileZeroWeights(t *testing.T) {
	results := []types.SearchResult{
		{Title: "a", Href: "https://youtube.com/a"},
		{Title: "b", Href: "https://bandcamp.com/b"},
		{Title: "c", Href: "https://example.com/c"},
	}

	ranked := Rerank(&types.Profile{}, results, types.Weights{}, 10)

	require.Len(t, ranked, 3)
	for i, item := range ranked {
		assert.Equal(t, 0.0, item.Score)
		assert.Equal(t, results[i].Title, item.Title)
	}
}

func TestRerank_SortsDescendingAndTruncates(t *testing.T) {
	results := []types.SearchResult{
		{Title: "nothing relevant", Href: "https://example.com/1"},
		{Title: "GoGo Penguin piano jazz syncopation 7/8", Body: "fusion trio", Href: "https://youtube.com/watch?v=1"},
		{Title: "jazz review", Href: "https://pitchfork.com/r"},
	}

	ranked := Rerank(jazzProfile(), results, balanced(), 2)

	require.Len(t, ranked, 2)
	assert.Equal(t, "https://youtube.com/watch?v=1", ranked[0].Href)
	assert.Equal(t, "https://pitchfork.com/r", ranked[1].Href)
	assert.GreaterOrEqual(t, ranked[0].Score, ranked[1].Score)
}

func TestRerank_FactorBreakdown(t *testing.T) {
	result := types.SearchResult{
		Title: "GoGo Penguin - Umbra (Official Video)",
		Body:  "Fusion jazz trio with piano and double bass, syncopation in 7/8",
		Href:  "https://www.youtube.com/watch?v=abc",
	}

	ranked := Rerank(jazzProfile(), []types.SearchResult{result}, balanced(), 5)
	require.Len(t, ranked, 1)
	why := ranked[0].Why

	// "Fusion" and "fusion" normalize to one tag
	assert.InDelta(t, 2*0.6, why["Genre"], 1e-9)
	assert.InDelta(t, 2*0.5, why["Instruments"], 1e-9)
	assert.InDelta(t, 0.5, why["Rhythm"], 1e-9)
	assert.InDelta(t, 0.4, why["Time signature"], 1e-9)
	assert.InDelta(t, 0.3, why["Site"], 1e-9)
	assert.Greater(t, why["Influence"], 0.0)
	assert.LessOrEqual(t, why["Influence"], 0.4)

	sum := 0.0
	for _, v := range why {
		sum += v
	}
	assert.InDelta(t, round3(sum), ranked[0].Score, 1e-9)
}

func TestRerank_StableTies(t *testing.T) {
	results := make([]types.SearchResult, 0, 6)
	for i := 0; i < 6; i++ {
		results = append(results, types.SearchResult{
			Title: fmt.Sprintf("jazz %d", i),
			Href:  fmt.Sprintf("https://example.com/%d", i),
		})
	}

	ranked := Rerank(&types.Profile{Tags: types.StringList{"jazz"}}, results, balanced(), 6)

	require.Len(t, ranked, 6)
	for i, item := range ranked {
		assert.Equal(t, results[i].Href, item.Href)
	}
}

func TestRerank_NeverInventsItems(t *testing.T) {
	results := []types.SearchResult{
		{Title: "one", Href: "https://a.example/1"},
		{Title: "two", Href: "https://b.example/2"},
	}

	ranked := Rerank(jazzProfile(), results, balanced(), 30)

	require.Len(t, ranked, 2)
	hrefs := map[string]bool{"https://a.example/1": true, "https://b.example/2": true}
	for _, item := range ranked {
		assert.True(t, hrefs[item.Href])
	}
}

func TestRerank_TopNBounds(t *testing.T) {
	results := []types.SearchResult{{Title: "x", Href: "https://x"}}

	assert.Empty(t, Rerank(jazzProfile(), results, balanced(), 0))
	assert.Empty(t, Rerank(jazzProfile(), nil, balanced(), 5))
	assert.Len(t, Rerank(jazzProfile(), results, balanced(), -1), 0)
}

func TestRerank_DoesNotMutateInputs(t *testing.T) {
	profile := jazzProfile()
	results := []types.SearchResult{{Title: "", Body: "jazz", Href: ""}}
	weights := balanced()

	ranked := Rerank(profile, results, weights, 5)

	require.Len(t, ranked, 1)
	assert.Equal(t, "(untitled)", ranked[0].Title)
	assert.Equal(t, "#", ranked[0].Href)
	assert.Equal(t, "", results[0].Title)
	assert.Equal(t, types.StringList{"Fusion", "jazz", "fusion"}, profile.Tags)
	assert.Equal(t, balanced(), weights)
}

func TestRerank_WeightMonotonicity(t *testing.T) {
	profile := jazzProfile()
	results := []types.SearchResult{
		{Title: "jazz piano", Href: "https://bandcamp.com/a"},
		{Title: "ambient drone", Href: "https://example.com/b"},
		{Title: "syncopation lesson 7/8", Href: "https://soundcloud.com/c"},
	}
	norm := profiling.Normalize(profile)

	for _, f := range types.Factors() {
		t.Run(string(f), func(t *testing.T) {
			low := balanced()
			high := withWeight(low, f, low.Get(f)+0.4)

			for _, r := range results {
				before := Contributions(norm, r, low)
				after := Contributions(norm, r, high)
				scoreBefore := scoreResult(norm, r, low).Score
				scoreAfter := scoreResult(norm, r, high).Score

				if before[f] == 0 && after[f] == 0 {
					assert.Equal(t, scoreBefore, scoreAfter, r.Href)
				} else {
					assert.GreaterOrEqual(t, scoreAfter, scoreBefore, r.Href)
				}
			}
		})
	}
}

func TestRerank_Deterministic(t *testing.T) {
	results := []types.SearchResult{
		{Title: "Portico Quartet live", Body: "acoustic electronica", Href: "https://tidal.com/x"},
		{Title: "Mammal Hands", Body: "spiritual jazz", Href: "https://deezer.com/y"},
	}

	first := Rerank(jazzProfile(), results, balanced(), 5)
	second := Rerank(jazzProfile(), results, balanced(), 5)

	assert.Equal(t, first, second)
}

func TestDomainBonus(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "top priority", text: "https://youtube.com/watch", want: 1.0},
		{name: "second", text: "https://youtu.be/x", want: 0.9},
		{name: "bandcamp", text: "https://artist.bandcamp.com/album", want: 0.6},
		{name: "first match wins", text: "pitchfork.com review linking youtube.com", want: 1.0},
		{name: "last entry floors to zero", text: "https://pitchfork.com/reviews", want: 0.0},
		{name: "no match", text: "https://example.com", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DomainBonus(tt.text, 1.0), 1e-9)
		})
	}
}

func withWeight(w types.Weights, f types.Factor, v float64) types.Weights {
	switch f {
	case types.FactorGenre:
		w.Genre = v
	case types.FactorInst:
		w.Inst = v
	case types.FactorRhythm:
		w.Rhythm = v
	case types.FactorTimeSig:
		w.TimeSig = v
	case types.FactorInfluence:
		w.Influence = v
	case types.FactorDomain:
		w.Domain = v
	}
	return w
}
