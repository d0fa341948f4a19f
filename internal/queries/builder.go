// Package queries derives web search queries from a song profile.
package queries

import (
	"fmt"
	"strings"

	"github.com/jonathan/song-scout/internal/types"
)

// Mode controls how many literal descriptive terms go into broad queries.
type Mode string

const (
	// ModeStrict adds rhythm, meter, region, era and tempo to the base bag.
	ModeStrict Mode = "strict"
	// ModeLoose keeps only tags and instruments so the backend can match more freely.
	ModeLoose Mode = "loose"
)

const (
	maxTags        = 6
	maxInstruments = 3
)

// RestrictClause is appended to every query when results are confined to playable media.
const RestrictClause = "site:youtube.com OR site:youtu.be"

// RestrictDomains are the domains named in RestrictClause.
var RestrictDomains = []string{"youtube.com", "youtu.be"}

// ParseMode parses a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeStrict:
		return ModeStrict, nil
	case ModeLoose:
		return ModeLoose, nil
	default:
		return "", fmt.Errorf("unknown query mode %q (want strict or loose)", s)
	}
}

// ShouldRestrict reports whether query-side site restriction applies: playable-only is on and
// every allowed domain is one of RestrictDomains.
func ShouldRestrict(playableOnly bool, allowed []string) bool {
	if !playableOnly {
		return false
	}
	for _, d := range allowed {
		if !isRestrictDomain(d) {
			return false
		}
	}
	return true
}

func isRestrictDomain(d string) bool {
	d = strings.ToLower(strings.TrimSpace(d))
	for _, r := range RestrictDomains {
		if d == r {
			return true
		}
	}
	return false
}

// Build returns the ordered, de-duplicated search queries for a profile.
func Build(p *types.Profile, mode Mode, restrict bool) []string {
	if p == nil {
		return []string{}
	}

	artist := strings.TrimSpace(p.Artist)
	title := strings.TrimSpace(p.Title)
	base := BaseBag(p, mode)

	var qs []string
	if artist != "" && title != "" {
		quoted := `"` + title + `"`
		qs = append(qs,
			join(artist, quoted, "review site:allmusic.com"),
			join(artist, quoted, "site:pitchfork.com"),
			join(artist, quoted, "site:bandcamp.com"),
		)
	}

	if base != "" {
		qs = append(qs,
			join(base, "site:bandcamp.com"),
			join(base, "similar artists"),
			join(base, "playlist"),
		)
	}

	if artist != "" {
		qs = append(qs,
			join(`"for fans of"`, artist, "site:bandcamp.com"),
			join(artist, "类似 音乐"),
			join(artist, title, "奖项 OR 获奖"),
		)
	}

	// Most permissive fallback
	if artist != "" || title != "" {
		qs = append(qs, join(artist, title, "similar songs OR 相似 歌曲"))
	}

	if restrict {
		for i, q := range qs {
			qs[i] = join(q, RestrictClause)
		}
	}

	return dedupe(qs)
}

// BaseBag returns the space-joined descriptive terms used by the broad queries.
func BaseBag(p *types.Profile, mode Mode) string {
	if p == nil {
		return ""
	}

	var bits []string
	bits = appendFirstN(bits, p.Tags, maxTags)
	bits = appendFirstN(bits, p.Instruments, maxInstruments)

	if mode != ModeLoose {
		for _, v := range []types.FlexString{p.Rhythm, p.TimeSignature, p.Region, p.Era, p.TempoBPM} {
			if s := strings.TrimSpace(v.String()); s != "" {
				bits = append(bits, s)
			}
		}
	}

	return strings.TrimSpace(strings.Join(bits, " "))
}

// appendFirstN takes the first n entries of src and appends the non-blank ones.
func appendFirstN(dst []string, src []string, n int) []string {
	if len(src) > n {
		src = src[:n]
	}
	for _, s := range src {
		if s = strings.TrimSpace(s); s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}

// join joins the non-blank parts with single spaces.
func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func dedupe(qs []string) []string {
	out := make([]string, 0, len(qs))
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
