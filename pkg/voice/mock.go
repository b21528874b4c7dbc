package voice

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// ProviderName reported by Name. Defaults to ProviderElevenLabs.
	ProviderName ProviderName

	// CloneVoiceFunc is called when CloneVoice is invoked.
	// If nil, returns a fixed voice id.
	CloneVoiceFunc func(ctx context.Context, name string, sample []byte) (string, error)

	// DeleteVoiceFunc is called when DeleteVoice is invoked.
	// If nil, returns nil.
	DeleteVoiceFunc func(ctx context.Context, voiceID string) error

	// ListVoicesFunc is called when ListVoices is invoked.
	// If nil, returns an empty list.
	ListVoicesFunc func(ctx context.Context) ([]Voice, error)

	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns a tiny MP3-framed buffer.
	SynthesizeFunc func(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)

	// TranscribeFunc is called when Transcribe is invoked.
	// If nil, returns a fixed transcript.
	TranscribeFunc func(ctx context.Context, audio []byte) (*Transcript, error)

	// Tracking
	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method  string
	VoiceID string
	Text    string
	Time    time.Time
}

// NewMock creates a new mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		ProviderName: ProviderElevenLabs,
		CloneVoiceFunc: func(ctx context.Context, name string, sample []byte) (string, error) {
			return "mock-voice-id", nil
		},
		SynthesizeFunc: func(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
			// A minimal buffer starting with an MP3 frame sync word.
			audio := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 32)...)
			return &SynthesisResult{
				Audio:     audio,
				CharCount: len(req.Text),
				LatencyMs: 5,
			}, nil
		},
		TranscribeFunc: func(ctx context.Context, audio []byte) (*Transcript, error) {
			return &Transcript{Text: "mock transcript", LatencyMs: 5}, nil
		},
	}
}

// Name returns the configured provider name.
func (m *Mock) Name() ProviderName {
	if m.ProviderName == "" {
		return ProviderElevenLabs
	}
	return m.ProviderName
}

// CloneVoice calls CloneVoiceFunc and records the call.
func (m *Mock) CloneVoice(ctx context.Context, name string, sample []byte) (string, error) {
	m.recordCall("CloneVoice", "", name)
	if m.CloneVoiceFunc != nil {
		return m.CloneVoiceFunc(ctx, name, sample)
	}
	return "mock-voice-id", nil
}

// DeleteVoice calls DeleteVoiceFunc and records the call.
func (m *Mock) DeleteVoice(ctx context.Context, voiceID string) error {
	m.recordCall("DeleteVoice", voiceID, "")
	if m.DeleteVoiceFunc != nil {
		return m.DeleteVoiceFunc(ctx, voiceID)
	}
	return nil
}

// ListVoices calls ListVoicesFunc and records the call.
func (m *Mock) ListVoices(ctx context.Context) ([]Voice, error) {
	m.recordCall("ListVoices", "", "")
	if m.ListVoicesFunc != nil {
		return m.ListVoicesFunc(ctx)
	}
	return nil, nil
}

// Synthesize calls SynthesizeFunc and records the call.
func (m *Mock) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	m.recordCall("Synthesize", req.VoiceID, req.Text)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	return nil, WrapError("mock", ErrNoAudio)
}

// Transcribe calls TranscribeFunc and records the call.
func (m *Mock) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	m.recordCall("Transcribe", "", "")
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return nil, WrapError("mock", ErrTranscribeUnsupported)
}

// Close records the call and returns nil.
func (m *Mock) Close() error {
	m.recordCall("Close", "", "")
	return nil
}

// recordCall adds a call to the tracking list.
func (m *Mock) recordCall(method, voiceID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Method:  method,
		VoiceID: voiceID,
		Text:    text,
		Time:    time.Now(),
	})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
