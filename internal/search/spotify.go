package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jonathan/song-scout/internal/types"
)

// spotifyMaxLimit is the Web API page limit for search.
const spotifyMaxLimit = 50

// Spotify searches tracks through the Spotify Web API. Every result links to open.spotify.com.
type Spotify struct {
	client *spotify.Client
	market string
}

// NewSpotify creates a Spotify backend authorised with client credentials.
func NewSpotify(ctx context.Context, clientID, clientSecret, market string) (*Spotify, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify search requires client credentials (SPOTIFY_ID, SPOTIFY_SECRET)")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewSpotifyWithClient(spotify.New(cc.Client(ctx)), market), nil
}

// NewSpotifyWithClient wraps an existing Spotify client.
func NewSpotifyWithClient(client *spotify.Client, market string) *Spotify {
	return &Spotify{client: client, market: market}
}

// Name implements Backend.
func (s *Spotify) Name() string {
	return BackendSpotify
}

// Search implements Backend.
func (s *Spotify) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	opts := []spotify.RequestOption{spotify.Limit(min(max(maxResults, 1), spotifyMaxLimit))}
	if s.market != "" {
		opts = append(opts, spotify.Market(s.market))
	}

	res, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, &Error{Backend: s.Name(), Query: query, Message: "request failed", Cause: err}
	}
	if res == nil || res.Tracks == nil {
		return nil, nil
	}

	results := make([]types.SearchResult, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		results = append(results, trackResult(t))
	}
	return results, nil
}

func trackResult(t spotify.FullTrack) types.SearchResult {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	href := t.ExternalURLs["spotify"]
	if href == "" && t.ID != "" {
		href = "https://open.spotify.com/track/" + string(t.ID)
	}

	title := t.Name
	if len(artists) > 0 {
		title = fmt.Sprintf("%s - %s", t.Name, strings.Join(artists, ", "))
	}

	body := strings.Join(artists, ", ")
	if t.Album.Name != "" {
		body = fmt.Sprintf("%s · %s", body, t.Album.Name)
		if t.Album.ReleaseDate != "" {
			body = fmt.Sprintf("%s (%s)", body, t.Album.ReleaseDate)
		}
	}

	return types.SearchResult{Title: title, Body: body, Href: href}
}
