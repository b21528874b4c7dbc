// Package voice provides a unified interface for voice-clone TTS providers.
//
// The package supports ElevenLabs and MiniMax behind one Provider interface
// covering the full clone lifecycle: create, list, delete, synthesize and
// (where supported) transcribe. The two providers signal failure differently
// (ElevenLabs through HTTP status, MiniMax through an embedded base_resp
// status code); both conventions are normalized here so callers never
// inspect provider-specific response shapes.
//
// Example usage:
//
//	provider, _ := voice.NewElevenLabs(
//	    voice.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, voice.SynthesisRequest{
//	    Text:    "Hello world",
//	    VoiceID: "your-voice-id",
//	    Speed:   1.0,
//	})
//	// result.Audio contains MP3 audio bytes
package voice

import (
	"context"
	"fmt"
)

// ProviderName identifies a voice provider.
type ProviderName string

const (
	// ProviderElevenLabs is the ElevenLabs voice platform.
	ProviderElevenLabs ProviderName = "elevenlabs"

	// ProviderMiniMax is the MiniMax voice platform.
	ProviderMiniMax ProviderName = "minimax"
)

// ParseProviderName validates a provider name from an untrusted request.
// An empty string defaults to ElevenLabs, matching client behavior.
func ParseProviderName(s string) (ProviderName, error) {
	switch s {
	case "", string(ProviderElevenLabs):
		return ProviderElevenLabs, nil
	case string(ProviderMiniMax):
		return ProviderMiniMax, nil
	}
	return "", fmt.Errorf("voice: unknown provider %q", s)
}

// Provider defines the voice provider interface.
// All implementations must satisfy this interface so callers can branch
// on provider exactly once, at request entry.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// CloneVoice creates a voice clone from an audio sample and returns
	// the new voice id. The sample format requirements are provider
	// specific (ElevenLabs accepts WebM, MiniMax requires WAV).
	CloneVoice(ctx context.Context, name string, sample []byte) (string, error)

	// DeleteVoice removes a voice by id, freeing its clone slot.
	DeleteVoice(ctx context.Context, voiceID string) error

	// ListVoices returns all voices visible to the account. Use
	// Voice.IsClone to pick out clones for slot accounting.
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize converts text to speech with the given voice.
	// Returns ErrVoiceExpired (wrapped) when the provider reports the
	// clone gone or invalid; the caller should restart clone setup.
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)

	// Transcribe converts recorded speech to text. Providers without a
	// speech-to-text API return ErrTranscribeUnsupported.
	Transcribe(ctx context.Context, audio []byte) (*Transcript, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Voice describes a voice known to a provider.
type Voice struct {
	// ID is the provider-assigned (or client-generated) voice id.
	ID string `json:"voice_id"`

	// Name is the human-readable voice name.
	Name string `json:"name"`

	// Category distinguishes stock voices from clones
	// (ElevenLabs uses "cloned"; MiniMax lists clones only).
	Category string `json:"category"`

	// Label metadata, empty when the provider doesn't supply it.
	Accent     string `json:"accent"`
	Gender     string `json:"gender"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// IsClone reports whether this voice occupies a clone slot.
func (v Voice) IsClone() bool {
	return v.Category == "cloned"
}

// SynthesisRequest describes one text-to-speech call.
type SynthesisRequest struct {
	// Text is the content to speak.
	Text string

	// VoiceID selects the (cloned) voice.
	VoiceID string

	// Speed is a playback-rate multiplier. Values outside the
	// provider's supported range are clamped, never rejected.
	Speed float64
}

// SynthesisResult is a completed synthesis.
type SynthesisResult struct {
	// Audio contains MP3 audio bytes.
	Audio []byte

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the round-trip time in milliseconds.
	LatencyMs int64
}

// Transcript is a completed speech-to-text call.
type Transcript struct {
	// Text is the transcribed speech, whitespace-trimmed.
	// Empty text means the recording contained no speech.
	Text string

	// LatencyMs is the round-trip time in milliseconds.
	LatencyMs int64
}

// clampSpeed bounds a requested speed multiplier to a provider's range.
func clampSpeed(speed, min, max float64) float64 {
	if speed < min {
		return min
	}
	if speed > max {
		return max
	}
	return speed
}
