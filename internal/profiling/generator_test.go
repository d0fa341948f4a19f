package profiling

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonathan/song-scout/internal/llm"
	"github.com/jonathan/song-scout/internal/llm/mocks"
	"github.com/jonathan/song-scout/internal/types"
)

const umbraReply = `{
	"title": "Umbra",
	"artist": "GoGo Penguin",
	"tags": ["jazz", "fusion", "electronic"],
	"instruments": ["piano", "double bass", "drums"],
	"rhythm": "syncopation",
	"time_signature": "7/8",
	"tempo_bpm": "110-130",
	"region": "UK",
	"era": "2020s",
	"similar_artists": ["Portico Quartet", "Mammal Hands"],
	"evidence_terms": ["acoustic electronica", "英国 爵士 三重奏"],
	"confidence": {"tags": 0.8, "rhythm": 0.6}
}`

func newMockClient(t *testing.T) *mocks.MockClient {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetModel(gomock.Any()).Return("gpt-4o").AnyTimes()
	return client
}

func TestGenerator_Generate(t *testing.T) {
	client := newMockClient(t)
	client.EXPECT().
		GenerateJSON(gomock.Any(), gomock.Any(), llm.TierStandard).
		DoAndReturn(func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "Umbra - GoGo Penguin")
			assert.Contains(t, prompt, `"time_signature"`)
			return "```json\n" + umbraReply + "\n```", nil
		})

	profile, err := NewGenerator(client).Generate(context.Background(), "  Umbra - GoGo Penguin  ")

	require.NoError(t, err)
	assert.Equal(t, "Umbra", profile.Title)
	assert.Equal(t, "GoGo Penguin", profile.Artist)
	assert.Equal(t, types.StringList{"jazz", "fusion", "electronic"}, profile.Tags)
	assert.Equal(t, types.FlexString("7/8"), profile.TimeSignature)
	assert.InDelta(t, 0.8, profile.Confidence["tags"], 1e-9)
}

func TestGenerator_WithTier(t *testing.T) {
	client := newMockClient(t)
	client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any(), llm.TierAdvanced).Return(`{}`, nil)

	profile, err := NewGenerator(client, WithTier(llm.TierAdvanced)).Generate(context.Background(), "Umbra")

	require.NoError(t, err)
	assert.True(t, profile.IsEmpty())
}

func TestGenerator_EmptySeed(t *testing.T) {
	client := newMockClient(t)

	_, err := NewGenerator(client).Generate(context.Background(), "   ")

	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "seed", inputErr.Field)
}

func TestGenerator_APIError(t *testing.T) {
	client := newMockClient(t)
	cause := errors.New("connection refused")
	client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return("", cause)

	_, err := NewGenerator(client).Generate(context.Background(), "Umbra - GoGo Penguin")

	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.ErrorIs(t, err, cause)
}

func TestGenerator_ParseFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "prose", reply: "Sorry, I don't know this song."},
		{name: "empty", reply: "   "},
		{name: "array", reply: `["jazz", "fusion"]`},
		{name: "wrong shape", reply: `{"tags": {"genre": "jazz"}}`},
		{name: "truncated", reply: `{"title": "Umbra", "tags": ["jazz"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockClient(t)
			client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.reply, nil)

			profile, err := NewGenerator(client).Generate(context.Background(), "Umbra - GoGo Penguin")

			assert.Nil(t, profile)
			var pf *ParseFailure
			require.True(t, errors.As(err, &pf), "want *ParseFailure, got %v", err)
			assert.Equal(t, tt.reply, pf.Raw)
		})
	}
}

func TestParseProfile_TolerantFields(t *testing.T) {
	profile, err := ParseProfile(`Here you go: {"tags": "jazz", "era": ["2010s", "2020s"], "tempo_bpm": 120}`)

	require.NoError(t, err)
	assert.Equal(t, types.StringList{"jazz"}, profile.Tags)
	assert.Equal(t, types.FlexString("2010s, 2020s"), profile.Era)
	assert.Equal(t, types.FlexString("120"), profile.TempoBPM)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Umbra - GoGo Penguin (2025)")

	assert.Contains(t, prompt, `"Umbra - GoGo Penguin (2025)"`)
	assert.NotContains(t, prompt, "{{.Seed}}")
	for _, field := range []string{"tags", "instruments", "similar_artists", "evidence_terms", "confidence"} {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
	assert.Contains(t, prompt, "Input text:")
}

func TestErrors_Messages(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "API call failed: x: boom", (&APICallError{Message: "x", Cause: cause}).Error())
	assert.Equal(t, "API call failed: x", (&APICallError{Message: "x"}).Error())
	assert.Equal(t, "profile parse failed: y: boom", (&ParseFailure{Message: "y", Cause: cause}).Error())
	assert.Equal(t, "invalid input seed: empty", (&InputError{Field: "seed", Message: "empty"}).Error())
	assert.Equal(t, "invalid input: empty", (&InputError{Message: "empty"}).Error())
}
