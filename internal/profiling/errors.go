package profiling

import "fmt"

// APICallError represents a failed call to the language model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseFailure means the model answered but the answer is not a usable profile.
// Raw holds the untouched model output so callers can show it.
type ParseFailure struct {
	Raw     string
	Message string
	Cause   error
}

func (e *ParseFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile parse failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("profile parse failed: %s", e.Message)
}

func (e *ParseFailure) Unwrap() error {
	return e.Cause
}

// InputError represents a bad seed or profile supplied by the caller
type InputError struct {
	Message string
	Field   string
}

func (e *InputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}
