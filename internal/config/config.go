// Package config provides configuration for the voice-mirror service.
// Flag parsing is done in cmd/voice-mirror/main.go; this struct is data only.
package config

import (
	"fmt"
	"os"
)

// Default configuration values.
const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"
)

// Config holds all configuration for the voice-mirror service.
// API keys are injected into provider adapters explicitly; business
// logic never reads the environment directly.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// LogLevel controls the slog level ("debug", "info", "warn", "error").
	LogLevel string

	// ElevenLabs credentials.
	ElevenLabsKey string

	// ElevenLabsVoiceID is an optional fallback voice for requests
	// that do not carry their own voice id.
	ElevenLabsVoiceID string

	// Anthropic credentials for the reflection LLM.
	AnthropicKey string

	// MiniMax credentials. GroupID accompanies every MiniMax call.
	MiniMaxKey     string
	MiniMaxGroupID string
}

// Load reads configuration from environment variables.
func Load() Config {
	cfg := Config{
		Port:     DefaultPort,
		LogLevel: DefaultLogLevel,
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	cfg.ElevenLabsKey = os.Getenv("ELEVENLABS_API_KEY")
	cfg.ElevenLabsVoiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	cfg.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.MiniMaxKey = os.Getenv("MINIMAX_API_KEY")
	cfg.MiniMaxGroupID = os.Getenv("MINIMAX_GROUP_ID")
	return cfg
}

// Validate checks that the minimum required configuration is present.
// MiniMax credentials are optional at startup; requests selecting the
// MiniMax provider are rejected per-request when they are missing.
func (c *Config) Validate() error {
	if c.ElevenLabsKey == "" {
		return &ConfigError{Field: "ElevenLabsKey", Message: "ELEVENLABS_API_KEY environment variable is required"}
	}
	if c.AnthropicKey == "" {
		return &ConfigError{Field: "AnthropicKey", Message: "ANTHROPIC_API_KEY environment variable is required"}
	}
	return nil
}

// HasMiniMax reports whether MiniMax credentials are configured.
func (c *Config) HasMiniMax() bool {
	return c.MiniMaxKey != "" && c.MiniMaxGroupID != ""
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}
