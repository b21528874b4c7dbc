package voice

import (
	"log/slog"
	"time"
)

// Config holds voice provider configuration.
// Use functional options (WithXxx) to set these values; credentials are
// always injected here, never read from the environment by adapters.
type Config struct {
	// Provider credentials
	APIKey  string
	GroupID string
	BaseURL string

	// Synthesis configuration
	ModelID       string
	VoiceSettings VoiceSettings

	// STTModelID selects the speech-to-text model, for providers
	// that support transcription.
	STTModelID string

	// Timeout for each provider round trip.
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// VoiceSettings controls voice characteristics for providers that support it.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0).
	Stability float64

	// SimilarityBoost controls how closely the voice matches the
	// original sample (0.0-1.0).
	SimilarityBoost float64
}

// DefaultVoiceSettings returns sensible defaults for cloned-voice synthesis.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}

// Option is a functional option for configuring voice providers.
type Option func(*Config)

// WithAPIKey sets the API key for the provider.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithGroupID sets the MiniMax account group id.
func WithGroupID(groupID string) Option {
	return func(c *Config) {
		c.GroupID = groupID
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the synthesis model id.
func WithModel(modelID string) Option {
	return func(c *Config) {
		c.ModelID = modelID
	}
}

// WithSTTModel sets the speech-to-text model id.
func WithSTTModel(modelID string) Option {
	return func(c *Config) {
		c.STTModelID = modelID
	}
}

// WithVoiceSettings sets voice characteristics.
func WithVoiceSettings(settings VoiceSettings) Option {
	return func(c *Config) {
		c.VoiceSettings = settings
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		VoiceSettings: DefaultVoiceSettings(),
		Timeout:       45 * time.Second,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}

// ValidateWithGroup checks API key and group id, for MiniMax.
func (c *Config) ValidateWithGroup() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GroupID == "" {
		return ErrNoGroupID
	}
	return nil
}
