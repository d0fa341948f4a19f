package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/song-scout/internal/config"
	"github.com/jonathan/song-scout/internal/pipeline"
	"github.com/jonathan/song-scout/internal/profiling"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Input problems map to 400 and model provider failures to 502.
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *profiling.InputError
		optionsErr    *pipeline.OptionsError
		configErr     *config.ValidationError
		apiErr        *profiling.APICallError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &inputErr),
		errors.As(err, &optionsErr),
		errors.As(err, &configErr):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
