package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	embedded "github.com/jonathan/song-scout/schemas"
)

func TestValidate_Profile(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "full profile",
			doc: `{"title": "Umbra", "artist": "GoGo Penguin", "tags": ["jazz", "fusion"],
				"instruments": ["piano"], "rhythm": "syncopation", "time_signature": "7/8",
				"tempo_bpm": "90-110", "confidence": {"tags": 0.8}}`,
		},
		{name: "empty object", doc: `{}`},
		{name: "string where list expected", doc: `{"tags": "jazz"}`},
		{name: "numbers in lists", doc: `{"tags": [1990, "jazz"], "tempo_bpm": 120}`},
		{name: "array where string expected", doc: `{"era": ["2010s", "2020s"]}`},
		{name: "nulls", doc: `{"title": null, "tags": null, "confidence": null}`},
		{name: "extra fields allowed", doc: `{"mood": "dark"}`},
		{name: "top level array", doc: `["jazz"]`, wantErr: true},
		{name: "object tags", doc: `{"tags": {"genre": "jazz"}}`, wantErr: true},
		{name: "numeric title", doc: `{"title": 42}`, wantErr: true},
		{name: "non numeric confidence", doc: `{"confidence": {"tags": "high"}}`, wantErr: true},
		{name: "nested arrays", doc: `{"tags": [["jazz"]]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(embedded.Profile, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
			assert.NotEmpty(t, ve.Errors)
			assert.Equal(t, embedded.Profile, ve.Schema)
		})
	}
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate(embedded.Profile, "I could not find that song.")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "(root)", ve.Errors[0].Field)
}

func TestValidate_Results(t *testing.T) {
	assert.NoError(t, Validate(embedded.Results, `[{"title": "a", "body": "b", "href": "https://x"}]`))
	assert.NoError(t, Validate(embedded.Results, `[]`))

	err := Validate(embedded.Results, `[{"title": "no link"}]`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Errors[0].Field, "0")
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", `{}`)

	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "missing.schema.json", le.Path)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type": "object", "required": ["href"], "properties": {"href": {"type": "string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"href": "https://youtu.be/x"}`))

	err := ValidateJSONString(schema, `{"title": "x"}`)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Errors, 1)
	assert.Equal(t, "(root)", ve.Errors[0].Field)

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: "profile.schema.json",
		Errors: []FieldError{
			{Field: "tags", Message: "Must validate one and only one schema"},
			{Field: "title", Message: "Invalid type"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation against profile.schema.json failed")
	assert.Contains(t, msg, "1. tags: Must validate one and only one schema")
	assert.Contains(t, msg, "2. title: Invalid type")
}
