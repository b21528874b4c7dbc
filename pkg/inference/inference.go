// Package inference provides the language-model stage of the reflection
// pipeline. The bundled client speaks the Anthropic messages API and
// walks an ordered model-fallback list when a model is overloaded.
package inference

import "context"

// Provider generates chat completions.
type Provider interface {
	// Chat generates a completion for the request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Role identifies a message author.
type Role string

const (
	// RoleUser is the human speaker.
	RoleUser Role = "user"

	// RoleAssistant is the model.
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one completion call.
type ChatRequest struct {
	// System is the system prompt.
	System string

	// Messages is the conversation so far. The reflection pipeline
	// sends exactly one user message: the transcript.
	Messages []Message

	// MaxTokens caps the completion length. Zero uses the client default.
	MaxTokens int
}

// ChatResponse is a completed chat call.
type ChatResponse struct {
	// Text is the completion text.
	Text string

	// Model is the model that actually answered, which may be a
	// fallback rather than the first-choice model.
	Model string

	// StopReason is the provider's reported stop reason.
	StopReason string

	// Usage reports token consumption.
	Usage Usage

	// LatencyMs is the total time including fallback attempts.
	LatencyMs int64
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
