package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
	"google.golang.org/api/option"

	"github.com/jonathan/song-scout/internal/config"
)

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	b, err := NewBackend(ctx, config.SearchConfig{Backend: "duckduckgo", Region: "wt-wt", SafeSearch: "off"})
	require.NoError(t, err)
	assert.Equal(t, BackendDuckDuckGo, b.Name())

	_, err = NewBackend(ctx, config.SearchConfig{Backend: "google"})
	assert.ErrorContains(t, err, "GOOGLE_CSE_CX")

	_, err = NewBackend(ctx, config.SearchConfig{Backend: "spotify"})
	assert.ErrorContains(t, err, "SPOTIFY_ID")

	_, err = NewBackend(ctx, config.SearchConfig{Backend: "bing"})
	assert.ErrorContains(t, err, `unsupported search backend "bing"`)
}

func TestCustomSearch_Search(t *testing.T) {
	var gotNum, gotCx, gotQ, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotNum = r.URL.Query().Get("num")
		gotCx = r.URL.Query().Get("cx")
		gotQ = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "Umbra", "snippet": "jazz trio", "link": "https://www.youtube.com/watch?v=abc"},
				{"title": "Bandcamp", "snippet": "", "link": "https://gogopenguin.bandcamp.com/"},
			},
		})
	}))
	defer srv.Close()

	cs, err := NewCustomSearch(context.Background(), "key", "engine", srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, BackendGoogle, cs.Name())

	results, err := cs.Search(context.Background(), "jazz trio", 24)
	require.NoError(t, err)

	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "10", gotNum)
	assert.Equal(t, "engine", gotCx)
	assert.Equal(t, "jazz trio", gotQ)
	require.Len(t, results, 2)
	assert.Equal(t, "Umbra", results[0].Title)
	assert.Equal(t, "jazz trio", results[0].Body)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", results[0].Href)
}

func TestCustomSearch_SendsAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		client *http.Client
	}{
		{name: "client without transport", client: &http.Client{}},
		{name: "client with timeout", client: &http.Client{Timeout: DefaultTimeout}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotKey = r.URL.Query().Get("key")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"items":[]}`))
			}))
			defer srv.Close()

			cs, err := NewCustomSearch(context.Background(), "secret-key", "engine", tt.client, option.WithEndpoint(srv.URL+"/"))
			require.NoError(t, err)

			_, err = cs.Search(context.Background(), "drum and bass", 5)
			require.NoError(t, err)
			assert.Equal(t, "secret-key", gotKey)
			assert.Nil(t, tt.client.Transport, "caller's client must not be mutated")
		})
	}
}

func TestSpotify_Search(t *testing.T) {
	var gotType, gotLimit, gotMarket string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		gotLimit = r.URL.Query().Get("limit")
		gotMarket = r.URL.Query().Get("market")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "tracks": {
		    "items": [
		      {
		        "id": "4uLU6hMCjMI75M1A2tKUQC",
		        "name": "Umbra",
		        "artists": [{"name": "GoGo Penguin"}],
		        "album": {"name": "Everything Is Going to Be OK", "release_date": "2023-04-14"},
		        "external_urls": {"spotify": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"}
		      },
		      {"id": "abc", "name": "Untitled", "artists": [], "album": {}}
		    ]
		  }
		}`))
	}))
	defer srv.Close()

	client := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	s := NewSpotifyWithClient(client, "GB")

	results, err := s.Search(context.Background(), "jazz trio", 8)
	require.NoError(t, err)

	assert.Equal(t, "track", gotType)
	assert.Equal(t, "8", gotLimit)
	assert.Equal(t, "GB", gotMarket)

	require.Len(t, results, 2)
	assert.Equal(t, "Umbra - GoGo Penguin", results[0].Title)
	assert.Equal(t, "GoGo Penguin · Everything Is Going to Be OK (2023-04-14)", results[0].Body)
	assert.Equal(t, "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", results[0].Href)
	assert.Equal(t, "Untitled", results[1].Title)
	assert.Equal(t, "https://open.spotify.com/track/abc", results[1].Href)
}
