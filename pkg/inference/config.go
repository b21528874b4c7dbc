package inference

import (
	"log/slog"
	"time"
)

// Default models tried in order. The first is the preferred model; the
// rest are fallbacks for overload conditions.
var DefaultModels = []string{
	"claude-sonnet-4-20250514",
	"claude-3-5-haiku-20241022",
}

// Config holds inference client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// APIKey authenticates with the Anthropic API.
	APIKey string

	// BaseURL overrides the default API base URL.
	BaseURL string

	// Models is the ordered fallback list. A model returning 529 or
	// 503 is skipped in favor of the next after FallbackDelay.
	Models []string

	// MaxTokens caps completion length when the request doesn't set one.
	MaxTokens int

	// FallbackDelay is the fixed wait before trying the next model.
	FallbackDelay time.Duration

	// Timeout for each HTTP round trip.
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModels sets the ordered model fallback list.
func WithModels(models ...string) Option {
	return func(c *Config) {
		c.Models = models
	}
}

// WithMaxTokens sets the default completion cap.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithFallbackDelay sets the wait between fallback attempts.
func WithFallbackDelay(d time.Duration) Option {
	return func(c *Config) {
		c.FallbackDelay = d
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithLogger sets the structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models:        DefaultModels,
		MaxTokens:     512,
		FallbackDelay: 500 * time.Millisecond,
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
	if len(c.Models) == 0 {
		return ErrNoModels
	}
	return nil
}
