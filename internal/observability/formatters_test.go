package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/types"
)

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	profile := &types.Profile{
		Title:          "Umbra",
		Artist:         "GoGo Penguin",
		Tags:           types.StringList{"jazz", "idm", "dub", "funk", "soul", "pop", "rock", "folk"},
		Instruments:    types.StringList{"piano", "double bass", "drums"},
		TimeSignature:  "7/8",
		SimilarArtists: types.StringList{"Portico Quartet"},
		Confidence:     map[string]float64{"tags": 0.9, "era": 0.4},
	}

	p.PrintProfile(profile)
	output := buf.String()

	assert.Contains(t, output, "SONG PROFILE")
	assert.Contains(t, output, "GoGo Penguin")
	assert.Contains(t, output, "jazz, idm, dub")
	assert.Contains(t, output, "(+2 more)")
	assert.Contains(t, output, "7/8")
	assert.Contains(t, output, "Portico Quartet")
	assert.Contains(t, output, "era=0.40 tags=0.90")
	assert.NotContains(t, output, "Rhythm:")
}

func TestPrintProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(nil)

	assert.Empty(t, buf.String())
}

func TestPrintQueries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQueries([]string{`GoGo Penguin "Umbra" site:pitchfork.com`, "jazz piano playlist"})
	output := buf.String()

	assert.Contains(t, output, "SEARCH QUERIES (2)")
	assert.Contains(t, output, " 1. GoGo Penguin")
	assert.Contains(t, output, " 2. jazz piano playlist")

	buf.Reset()
	p.PrintQueries(nil)
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintRanked(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRanked([]types.RankedItem{
		{
			Score: 1.734,
			Title: "GoGo Penguin - Umbra (Official Video)",
			Href:  "https://www.youtube.com/watch?v=abc",
			Why:   map[string]float64{"Genre": 1.2, "Instruments": 0.5, "Site": 0.3, "Rhythm": 0},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "1.734")
	assert.Contains(t, output, "GoGo Penguin - Umbra")
	assert.Contains(t, output, "Genre 1.20, Instruments 0.50, Site 0.30")
	assert.NotContains(t, output, "Rhythm")
}

func TestPrintRanked_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRanked(nil)

	assert.Contains(t, buf.String(), "No ranked results.")
}

func TestPrintPresets(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPresets(config.Presets)
	output := buf.String()

	for _, name := range config.PresetNames() {
		assert.Contains(t, output, name)
	}
	assert.Contains(t, output, "1.0")
}

func TestPrintReport_ParseFailure(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(&types.Report{Seed: "Umbra - GoGo Penguin", ParseFailure: "not json"})
	output := buf.String()

	assert.Contains(t, output, "could not be parsed")
	assert.Contains(t, output, "not json")
	assert.NotContains(t, output, "SEARCH QUERIES")
}

func TestPrintReport_Messages(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(&types.Report{
		Seed:           "Umbra - GoGo Penguin",
		Profile:        &types.Profile{Title: "Umbra"},
		Queries:        []string{"Umbra similar songs"},
		RetrievalError: "duckduckgo search failed",
		Message:        "no results left after filtering",
	})
	output := buf.String()

	assert.Contains(t, output, "Results: 0 raw, 0 after filtering, 0 ranked")
	assert.Contains(t, output, "search failed: duckduckgo search failed")
	assert.Contains(t, output, "no results left after filtering")
}

func TestNewColorPrinter_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	NewColorPrinter(&buf, true).PrintRanked(nil)

	assert.False(t, strings.Contains(buf.String(), "\x1b["))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "相似歌曲...", truncate("相似歌曲相似歌曲相似歌曲", 7))
}
