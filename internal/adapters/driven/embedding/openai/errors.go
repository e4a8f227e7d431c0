package openai

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// codeContextLengthExceeded is returned when the input exceeds the model limit.
const codeContextLengthExceeded = "context_length_exceeded"

// APIError represents an OpenAI API error response.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openai: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap reports over-long input as domain.ErrInputTooLong and a rejected
// key as domain.ErrUnauthorized.
func (e *APIError) Unwrap() error {
	switch {
	case e.IsInputTooLong():
		return domain.ErrInputTooLong
	case e.IsUnauthorized():
		return domain.ErrUnauthorized
	}
	return nil
}

// IsInputTooLong reports whether the request was rejected for its length.
func (e *APIError) IsInputTooLong() bool {
	return e.Code == codeContextLengthExceeded ||
		strings.Contains(strings.ToLower(e.Message), "maximum context length")
}

// IsUnauthorized checks if the API key was rejected.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}
