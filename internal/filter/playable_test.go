package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/song-scout/internal/types"
)

func sampleResults() []types.SearchResult {
	return []types.SearchResult{
		{Title: "Umbra (Official Video)", Href: "https://www.YouTube.com/watch?v=abc"},
		{Title: "Review", Href: "https://pitchfork.com/reviews/umbra"},
		{Title: "Short link", Href: "https://youtu.be/abc"},
		{Title: "Album", Href: "https://gogopenguin.bandcamp.com/album/everything-is-going-to-be-ok"},
		{Title: "No link"},
	}
}

func TestPlayable_YouTubeOnly(t *testing.T) {
	kept := Playable(sampleResults(), DefaultAllowedDomains)

	assert.Len(t, kept, 2)
	assert.Equal(t, "Umbra (Official Video)", kept[0].Title)
	assert.Equal(t, "Short link", kept[1].Title)
}

func TestPlayable_Subsequence(t *testing.T) {
	in := sampleResults()
	kept := Playable(in, []string{"bandcamp.com", "youtube.com"})

	// order of the input is kept
	assert.Equal(t, []string{"Umbra (Official Video)", "Album"}, []string{kept[0].Title, kept[1].Title})
	for _, k := range kept {
		assert.Contains(t, in, k)
	}
}

func TestPlayable_EmptyAllowList(t *testing.T) {
	assert.Empty(t, Playable(sampleResults(), nil))
	assert.Empty(t, Playable(sampleResults(), []string{" ", ""}))
}

func TestPlayable_AllowListCaseInsensitive(t *testing.T) {
	kept := Playable(sampleResults(), []string{" YOUTU.BE "})

	assert.Len(t, kept, 1)
	assert.Equal(t, "https://youtu.be/abc", kept[0].Href)
}

func TestApply(t *testing.T) {
	in := sampleResults()

	assert.Equal(t, in, Apply(in, false, nil))
	assert.Len(t, Apply(in, true, DefaultAllowedDomains), 2)
}

func TestIsKnownDomain(t *testing.T) {
	assert.True(t, IsKnownDomain("open.spotify.com"))
	assert.True(t, IsKnownDomain(" Deezer.com "))
	assert.False(t, IsKnownDomain("pitchfork.com"))
}
