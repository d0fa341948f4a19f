package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes a structured JSON answer the model must produce.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SongProfile")
	Description string        // Preamble describing the task
	Fields      []SchemaField // Expected output fields
	Rules       []string      // Extra instructions listed after the field block
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  %q: %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	for _, rule := range schema.Rules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// SongProfileSchema returns the extraction schema for a song profile.
// description is the task preamble, usually loaded from the prompt files.
func SongProfileSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "SongProfile",
		Description: description,
		Fields: []SchemaField{
			{Name: "title", Type: `"string"`, Description: "Song title as released", Required: true},
			{Name: "artist", Type: `"string"`, Description: "Performing artist", Required: true},
			{Name: "tags", Type: `["string"]`, Description: "5-12 genre and sub-genre tags", Required: true},
			{Name: "instruments", Type: `["string"]`, Description: "Main instruments"},
			{Name: "rhythm", Type: `"string"`, Description: "straight, swing, syncopation, shuffle or polyrhythm"},
			{Name: "time_signature", Type: `"string"`, Description: "e.g. 4/4, 3/4, 5/4, 7/8"},
			{Name: "tempo_bpm", Type: `"string"`, Description: `range such as "90-110", or slow/medium/fast`},
			{Name: "region", Type: `"string"`, Description: "Country or scene"},
			{Name: "era", Type: `"string"`, Description: "Decade or period"},
			{Name: "label", Type: `"string"`, Description: "Record label, if known"},
			{Name: "awards", Type: `["string"]`, Description: "Notable awards with years, if known"},
			{Name: "similar_artists", Type: `["string"]`, Description: "3-8 similar artists"},
			{Name: "evidence_terms", Type: `["string"]`, Description: "8-15 search keywords, English and Chinese mixed"},
			{Name: "confidence", Type: `{"field": 0.0}`, Description: "0-1 confidence per field, e.g. {\"tags\": 0.8, \"rhythm\": 0.6}"},
		},
		Rules: []string{
			"Check that the artist name and song title belong together; when unsure, keep confidence below 0.5.",
			"Leave a field empty rather than guessing.",
		},
	}
}
