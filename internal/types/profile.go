// Package types provides type definitions for structured data used throughout the song-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Profile is the structured musical description of a song produced by the language model.
// Every field is optional; the model decides what it can fill in.
type Profile struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`

	// Ordered by relevance as produced by the model
	Tags           StringList `json:"tags,omitempty"`
	Instruments    StringList `json:"instruments,omitempty"`
	SimilarArtists StringList `json:"similar_artists,omitempty"`
	EvidenceTerms  StringList `json:"evidence_terms,omitempty"`

	Rhythm        FlexString `json:"rhythm,omitempty"`
	TimeSignature FlexString `json:"time_signature,omitempty"`
	TempoBPM      FlexString `json:"tempo_bpm,omitempty"` // range ("90-110") or bucket (slow/medium/fast)
	Region        FlexString `json:"region,omitempty"`
	Era           FlexString `json:"era,omitempty"`
	Label         FlexString `json:"label,omitempty"`
	Awards        StringList `json:"awards,omitempty"`

	// Confidence holds per-field confidence in [0,1], keyed by field name.
	// Keys are whatever the model reports, not only the fields above.
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// IsEmpty reports whether the profile carries nothing usable for query building.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return strings.TrimSpace(p.Title) == "" &&
		strings.TrimSpace(p.Artist) == "" &&
		len(p.Tags) == 0 &&
		len(p.Instruments) == 0 &&
		p.Rhythm == "" && p.TimeSignature == "" && p.TempoBPM == "" &&
		p.Region == "" && p.Era == ""
}

// StringList is a list of strings that also accepts a bare string or null in JSON.
// Models are not consistent about emitting arrays for single values.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(StringList, 0, len(raw))
		for _, item := range raw {
			out = append(out, scalarString(item))
		}
		*l = out
		return nil
	default:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if _, isObject := v.(map[string]any); isObject {
			return fmt.Errorf("cannot decode object into string list")
		}
		*l = StringList{scalarString(v)}
		return nil
	}
}

// FlexString is a string that also accepts numbers, booleans and arrays in JSON.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if str := scalarString(item); str != "" {
				parts = append(parts, str)
			}
		}
		*s = FlexString(strings.Join(parts, ", "))
	case map[string]any:
		return fmt.Errorf("cannot decode object into string")
	default:
		*s = FlexString(scalarString(val))
	}
	return nil
}

// String returns the value as a plain string.
func (s FlexString) String() string {
	return string(s)
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
