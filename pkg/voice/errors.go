package voice

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("voice: API key required")

	// ErrNoGroupID is returned when the MiniMax group id is missing.
	ErrNoGroupID = errors.New("voice: group id required")

	// ErrVoiceExpired is returned when the provider reports that the
	// clone no longer exists (expired, deleted, or slot revoked).
	// Callers should drop the cached voice id and re-clone.
	ErrVoiceExpired = errors.New("voice: voice clone expired")

	// ErrNoAudio is returned when a synthesis response carried no
	// decodable audio payload.
	ErrNoAudio = errors.New("voice: no audio in response")

	// ErrTranscribeUnsupported is returned by providers without a
	// speech-to-text API.
	ErrTranscribeUnsupported = errors.New("voice: transcription not supported by provider")
)

// APIError represents an error response from a voice provider API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Code is the provider's embedded status code, for providers that
	// report failure inside a 200 body (MiniMax base_resp.status_code).
	Code int

	// Provider identifies which provider returned the error.
	Provider string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("voice [%s]: API error %d (code %d): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("voice [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error (HTTP 429).
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsUnauthorized returns true if this is an authentication error (HTTP 401).
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsNotFound returns true if the resource was not found (HTTP 404).
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("voice [%s]: %v", e.Provider, e.Err)
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

// IsVoiceExpired reports whether err means the clone is gone and the
// caller should restart voice setup.
func IsVoiceExpired(err error) bool {
	return errors.Is(err, ErrVoiceExpired)
}

// expiredMessage reports whether a provider error message describes a
// missing or invalid voice clone rather than a generic failure. The
// substrings cover both providers' phrasings for an expired slot.
func expiredMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range []string{"voice", "slot", "not found", "invalid"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
