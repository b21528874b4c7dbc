package inference

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoAPIKey is returned when API key is required but missing.
	ErrNoAPIKey = errors.New("inference: API key required")

	// ErrNoModels is returned when the fallback list is empty.
	ErrNoModels = errors.New("inference: at least one model required")

	// ErrEmptyCompletion is returned when the model answered with no
	// usable text. Terminal; fallback does not help here.
	ErrEmptyCompletion = errors.New("inference: model returned empty completion")

	// ErrAllModelsFailed is returned when every model in the fallback
	// list was overloaded or unavailable.
	ErrAllModelsFailed = errors.New("inference: all models failed")
)

// APIError represents an error response from the inference API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Type is the API's error type string (if provided).
	Type string

	// Model is the model the failing attempt targeted.
	Model string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("inference [%s]: API error %d (%s): %s",
			e.Model, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("inference [%s]: API error %d: %s",
		e.Model, e.StatusCode, e.Message)
}

// IsOverloaded reports whether the model should be skipped in favor of
// the next one in the fallback list (529 overloaded, 503 unavailable).
func (e *APIError) IsOverloaded() bool {
	return e.StatusCode == 529 || e.StatusCode == 503
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("inference [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
