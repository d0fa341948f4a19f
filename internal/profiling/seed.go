package profiling

import (
	"regexp"
	"strings"
)

// Seed is the user's song reference split into its parts.
// Parsing is best effort; the raw seed is what the model sees.
type Seed struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Year   string `json:"year,omitempty"`
}

var (
	trailingYear   = regexp.MustCompile(`\s*[(\[]\s*((?:19|20)\d{2})\s*[)\]]\s*$`)
	seedSeparators = []string{" - ", " – ", " — "}
)

// ParseSeed splits "Title - Artist (Year)" into its parts.
// Without a separator the whole text is the title.
func ParseSeed(raw string) Seed {
	s := strings.TrimSpace(raw)

	var seed Seed
	if m := trailingYear.FindStringSubmatchIndex(s); m != nil {
		seed.Year = s[m[2]:m[3]]
		s = strings.TrimSpace(s[:m[0]])
	}

	for _, sep := range seedSeparators {
		if idx := strings.Index(s, sep); idx > 0 {
			seed.Title = strings.TrimSpace(s[:idx])
			seed.Artist = strings.TrimSpace(s[idx+len(sep):])
			return seed
		}
	}

	seed.Title = s
	return seed
}

// String renders the seed back in "Title - Artist (Year)" form.
func (s Seed) String() string {
	out := s.Title
	if s.Artist != "" {
		out += " - " + s.Artist
	}
	if s.Year != "" {
		out += " (" + s.Year + ")"
	}
	return out
}
