// Package search retrieves raw web results for the generated queries.
//
// A Backend runs a single query. The Retriever runs a query set against one
// backend under a result budget and de-duplicates the union by link.
package search

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/types"
)

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks github.com/jonathan/song-scout/internal/search Backend

// Backend runs one web search query.
type Backend interface {
	// Search returns at most maxResults results for query.
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Backend names accepted by NewBackend.
const (
	BackendDuckDuckGo = "duckduckgo"
	BackendGoogle     = "google"
	BackendSpotify    = "spotify"
)

// Error represents a failed search call.
type Error struct {
	Backend string
	Query   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s search failed for %q: %s: %v", e.Backend, e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s search failed for %q: %s", e.Backend, e.Query, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewBackend creates the backend selected by cfg.Backend.
func NewBackend(ctx context.Context, cfg config.SearchConfig) (Backend, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Backend {
	case BackendDuckDuckGo, "":
		return NewDuckDuckGo(
			WithHTTPClient(httpClient),
			WithRegion(cfg.Region),
			WithSafeSearch(cfg.SafeSearch),
		), nil
	case BackendGoogle:
		return NewCustomSearch(ctx, cfg.Google.APIKey, cfg.Google.CX, httpClient)
	case BackendSpotify:
		return NewSpotify(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.Market)
	default:
		return nil, fmt.Errorf("unsupported search backend %q", cfg.Backend)
	}
}
