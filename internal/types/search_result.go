package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchResult is a single raw result returned by a search backend.
type SearchResult struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Href  string `json:"href"`
}

// Key returns the identity used for de-duplication.
func (r SearchResult) Key() string {
	return strings.TrimSpace(r.Href)
}

// RankedItem is a scored search result with its per-factor explanation.
type RankedItem struct {
	Score float64            `json:"score"`
	Why   map[string]float64 `json:"why"`
	Title string             `json:"title"`
	Href  string             `json:"href"`
	Body  string             `json:"body"`
}

// Report is the outcome of a single seed-to-ranking pipeline run.
type Report struct {
	RunID   uuid.UUID `json:"run_id"`
	Seed    string    `json:"seed"`
	Profile *Profile  `json:"profile,omitempty"`

	// ParseFailure holds the raw model output when it could not be parsed.
	// When set, no later stage ran.
	ParseFailure string `json:"parse_failure,omitempty"`

	Queries       []string     `json:"queries"`
	RawCount      int          `json:"raw_count"`
	FilteredCount int          `json:"filtered_count"`
	Ranked        []RankedItem `json:"ranked"`

	RetrievalError string        `json:"retrieval_error,omitempty"`
	Message        string        `json:"message,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
}
