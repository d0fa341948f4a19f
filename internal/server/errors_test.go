package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/pipeline"
	"github.com/jonathan/song-scout/internal/profiling"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "top_n", Message: "out of range"}
	assert.Equal(t, "validation error: top_n - out of range", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "seed", Message: "required"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "InputError",
			err:      &profiling.InputError{Field: "seed", Message: "empty"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "OptionsError",
			err:      &pipeline.OptionsError{Message: "options out of range"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "config ValidationError",
			err:      &config.ValidationError{Field: "ranking", Message: "unknown preset"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "APICallError",
			err:      &profiling.APICallError{Message: "request failed", Cause: errors.New("timeout")},
			expected: http.StatusBadGateway,
		},
		{
			name:     "wrapped APICallError",
			err:      fmt.Errorf("generate: %w", &profiling.APICallError{Message: "request failed"}),
			expected: http.StatusBadGateway,
		},
		{
			name:     "unknown error",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
