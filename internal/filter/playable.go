// Package filter keeps only search results that link to a playable music site.
package filter

import (
	"strings"

	"github.com/jonathan/song-scout/internal/types"
)

// DefaultAllowedDomains is the allow-list used when the caller gives none.
var DefaultAllowedDomains = []string{"youtube.com", "youtu.be"}

// KnownPlayableDomains are the domains a caller may choose from.
var KnownPlayableDomains = []string{
	"youtube.com", "youtu.be", "open.spotify.com", "music.apple.com",
	"bandcamp.com", "soundcloud.com", "tidal.com", "deezer.com",
}

// Playable keeps, in order, the results whose lower-cased href contains an allowed domain.
// An empty allow-list keeps nothing.
func Playable(results []types.SearchResult, allowed []string) []types.SearchResult {
	domains := make([]string, 0, len(allowed))
	for _, d := range allowed {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	kept := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		href := strings.ToLower(r.Href)
		for _, d := range domains {
			if strings.Contains(href, d) {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

// Apply filters results when playableOnly is set and returns them unchanged otherwise.
func Apply(results []types.SearchResult, playableOnly bool, allowed []string) []types.SearchResult {
	if !playableOnly {
		return results
	}
	return Playable(results, allowed)
}

// IsKnownDomain reports whether d is one of KnownPlayableDomains.
func IsKnownDomain(d string) bool {
	d = strings.ToLower(strings.TrimSpace(d))
	for _, known := range KnownPlayableDomains {
		if d == known {
			return true
		}
	}
	return false
}
