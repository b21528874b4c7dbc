package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/unknownking07/voice-mirror/internal/httpc"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1"
	providerElevenLabs = "elevenlabs"

	// ModelMultilingualV2 is the synthesis model used for cloned voices.
	ModelMultilingualV2 = "eleven_multilingual_v2"

	// ModelScribeV1 is the speech-to-text model.
	ModelScribeV1 = "scribe_v1"

	// ElevenLabs accepts speed multipliers in [0.25, 4.0].
	elevenLabsMinSpeed = 0.25
	elevenLabsMaxSpeed = 4.0
)

// ElevenLabs implements Provider for the ElevenLabs API.
// Success is signaled by HTTP status; error bodies carry detail.message.
type ElevenLabs struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewElevenLabs creates a new ElevenLabs voice provider.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.ModelID = ModelMultilingualV2
	cfg.STTModelID = ModelScribeV1
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	return &ElevenLabs{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "voice.elevenlabs"),
		baseURL: baseURL,
	}, nil
}

// Name returns the provider identifier.
func (e *ElevenLabs) Name() ProviderName {
	return ProviderElevenLabs
}

// CloneVoice uploads an audio sample and creates a voice clone.
func (e *ElevenLabs) CloneVoice(ctx context.Context, name string, sample []byte) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("name", name); err != nil {
		return "", WrapError(providerElevenLabs, err)
	}
	part, err := form.CreateFormFile("files", "voice-sample.webm")
	if err != nil {
		return "", WrapError(providerElevenLabs, err)
	}
	if _, err := part.Write(sample); err != nil {
		return "", WrapError(providerElevenLabs, err)
	}
	if err := form.Close(); err != nil {
		return "", WrapError(providerElevenLabs, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/voices/add", &buf)
	if err != nil {
		return "", WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", WrapError(providerElevenLabs, fmt.Errorf("clone request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", e.parseError(resp)
	}

	var result struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError(providerElevenLabs, fmt.Errorf("decode response: %w", err))
	}
	if result.VoiceID == "" {
		return "", WrapError(providerElevenLabs, fmt.Errorf("clone response missing voice_id"))
	}

	e.logger.Info("voice cloned", "voice_id", result.VoiceID, "sample_bytes", len(sample))
	return result.VoiceID, nil
}

// DeleteVoice removes a voice clone by id.
func (e *ElevenLabs) DeleteVoice(ctx context.Context, voiceID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", e.baseURL+"/voices/"+voiceID, nil)
	if err != nil {
		return WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return WrapError(providerElevenLabs, fmt.Errorf("delete request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.parseError(resp)
	}

	e.logger.Debug("voice deleted", "voice_id", voiceID)
	return nil
}

// ListVoices returns all voices on the account, stock and cloned.
func (e *ElevenLabs) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"/voices", nil)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("list request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseError(resp)
	}

	var result struct {
		Voices []struct {
			VoiceID    string            `json:"voice_id"`
			Name       string            `json:"name"`
			Category   string            `json:"category"`
			Labels     map[string]string `json:"labels"`
			PreviewURL string            `json:"preview_url"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("decode response: %w", err))
	}

	voices := make([]Voice, len(result.Voices))
	for i, v := range result.Voices {
		voices[i] = Voice{
			ID:         v.VoiceID,
			Name:       v.Name,
			Category:   v.Category,
			Accent:     v.Labels["accent"],
			Gender:     v.Labels["gender"],
			PreviewURL: v.PreviewURL,
		}
	}
	return voices, nil
}

// Synthesize converts text to MP3 audio with a cloned voice.
func (e *ElevenLabs) Synthesize(ctx context.Context, sreq SynthesisRequest) (*SynthesisResult, error) {
	start := time.Now()

	speed := clampSpeed(sreq.Speed, elevenLabsMinSpeed, elevenLabsMaxSpeed)

	payload := map[string]interface{}{
		"text":     sreq.Text,
		"model_id": e.config.ModelID,
		"voice_settings": map[string]interface{}{
			"stability":        e.config.VoiceSettings.Stability,
			"similarity_boost": e.config.VoiceSettings.SimilarityBoost,
			"speed":            speed,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream", e.baseURL, sreq.VoiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("synthesis request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := e.parseError(resp)
		// A missing or deleted voice means the clone is gone; surface
		// that distinctly so the caller can restart voice setup.
		if resp.StatusCode == http.StatusNotFound || expiredVoiceError(apiErr) {
			e.logger.Warn("voice gone during synthesis", "voice_id", sreq.VoiceID, "error", apiErr)
			return nil, WrapError(providerElevenLabs, ErrVoiceExpired)
		}
		return nil, apiErr
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("read response: %w", err))
	}

	e.logger.Debug("synthesized audio",
		"chars", len(sreq.Text),
		"bytes", len(audio),
		"speed", speed,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &SynthesisResult{
		Audio:     audio,
		CharCount: len(sreq.Text),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Transcribe converts recorded speech to text via the scribe model.
func (e *ElevenLabs) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	start := time.Now()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "recording.webm")
	if err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	if err := form.WriteField("model_id", e.config.STTModelID); err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}
	if err := form.Close(); err != nil {
		return nil, WrapError(providerElevenLabs, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/speech-to-text", &buf)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("transcription request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.parseError(resp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("decode response: %w", err))
	}

	text := strings.TrimSpace(result.Text)
	e.logger.Debug("transcribed audio",
		"bytes", len(audio),
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &Transcript{
		Text:      text,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Close releases resources held by the provider.
func (e *ElevenLabs) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	// Try to parse JSON error
	var errResp struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Detail.Message != "" {
		message = errResp.Detail.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerElevenLabs,
	}
}

// expiredVoiceError reports whether an APIError describes a gone clone.
func expiredVoiceError(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest && expiredMessage(apiErr.Message)
}

// Verify ElevenLabs implements Provider at compile time.
var _ Provider = (*ElevenLabs)(nil)
