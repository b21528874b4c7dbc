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
	"regexp"
	"strings"
	"time"

	"github.com/unknownking07/voice-mirror/internal/httpc"
)

const (
	miniMaxBaseURL  = "https://api.minimax.io/v1"
	providerMiniMax = "minimax"

	// ModelSpeech02Turbo is the MiniMax synthesis model for cloned voices.
	ModelSpeech02Turbo = "speech-02-turbo"

	// MiniMax accepts speed multipliers in [0.5, 2.0].
	miniMaxMinSpeed = 0.5
	miniMaxMaxSpeed = 2.0

	miniMaxSampleRate = 32000
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// MiniMax implements Provider for the MiniMax API.
//
// MiniMax success cannot be judged from HTTP status alone: the API
// returns 200 with a non-zero base_resp.status_code on some failures,
// so every response body is checked. Clone creation is two-step
// (file upload, then voice_clone with a client-generated voice id)
// because the provider does not assign ids itself.
type MiniMax struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string

	// now is stubbed in tests to pin generated voice ids.
	now func() time.Time
}

// baseResp is MiniMax's embedded status envelope. status_code 0 is success.
type baseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

func (b baseResp) ok() bool {
	return b.StatusCode == 0
}

// NewMiniMax creates a new MiniMax voice provider.
func NewMiniMax(opts ...Option) (*MiniMax, error) {
	cfg := DefaultConfig()
	cfg.ModelID = ModelSpeech02Turbo
	cfg.Apply(opts...)

	if err := cfg.ValidateWithGroup(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = miniMaxBaseURL
	}

	return &MiniMax{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "voice.minimax"),
		baseURL: baseURL,
		now:     time.Now,
	}, nil
}

// Name returns the provider identifier.
func (m *MiniMax) Name() ProviderName {
	return ProviderMiniMax
}

// GenerateVoiceID builds a client-side voice id for a clone. MiniMax
// does not echo an id back, so the caller must pick one up front.
func (m *MiniMax) GenerateVoiceID(name string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return fmt.Sprintf("mirror_%s_%d", slug, m.now().UnixMilli())
}

// CloneVoice uploads a WAV sample and creates a voice clone.
// The returned voice id is client-generated.
func (m *MiniMax) CloneVoice(ctx context.Context, name string, sample []byte) (string, error) {
	fileID, err := m.uploadSample(ctx, sample)
	if err != nil {
		return "", err
	}

	voiceID := m.GenerateVoiceID(name)

	payload := map[string]interface{}{
		"file_id":  fileID,
		"voice_id": voiceID,
	}
	var result struct {
		BaseResp baseResp `json:"base_resp"`
	}
	if err := m.postJSON(ctx, "/voice_clone", payload, &result); err != nil {
		return "", err
	}
	if !result.BaseResp.ok() {
		return "", m.apiError(http.StatusOK, result.BaseResp)
	}

	m.logger.Info("voice cloned", "voice_id", voiceID, "file_id", fileID, "sample_bytes", len(sample))
	return voiceID, nil
}

// uploadSample pushes the audio sample to MiniMax file storage and
// returns the file id used by the clone call.
func (m *MiniMax) uploadSample(ctx context.Context, sample []byte) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "voice-sample.wav")
	if err != nil {
		return "", WrapError(providerMiniMax, err)
	}
	if _, err := part.Write(sample); err != nil {
		return "", WrapError(providerMiniMax, err)
	}
	if err := form.WriteField("purpose", "voice_clone"); err != nil {
		return "", WrapError(providerMiniMax, err)
	}
	if err := form.Close(); err != nil {
		return "", WrapError(providerMiniMax, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.url("/files/upload"), &buf)
	if err != nil {
		return "", WrapError(providerMiniMax, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return "", WrapError(providerMiniMax, fmt.Errorf("upload request: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var result struct {
		BaseResp baseResp `json:"base_resp"`
		File     struct {
			FileID json.Number `json:"file_id"`
		} `json:"file"`
	}
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(body, &result)
		return "", m.apiError(resp.StatusCode, result.BaseResp)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", WrapError(providerMiniMax, fmt.Errorf("decode upload response: %w", err))
	}
	if !result.BaseResp.ok() {
		return "", m.apiError(resp.StatusCode, result.BaseResp)
	}
	if result.File.FileID == "" {
		return "", WrapError(providerMiniMax, fmt.Errorf("upload response missing file_id"))
	}
	return result.File.FileID.String(), nil
}

// DeleteVoice removes a voice clone by id.
func (m *MiniMax) DeleteVoice(ctx context.Context, voiceID string) error {
	payload := map[string]interface{}{
		"voice_id":   voiceID,
		"voice_type": "voice_cloning",
	}
	var result struct {
		BaseResp baseResp `json:"base_resp"`
	}
	if err := m.postJSON(ctx, "/delete_voice", payload, &result); err != nil {
		return err
	}
	if !result.BaseResp.ok() {
		return m.apiError(http.StatusOK, result.BaseResp)
	}
	m.logger.Debug("voice deleted", "voice_id", voiceID)
	return nil
}

// ListVoices returns the account's voice clones. MiniMax only lists
// clones here, so every entry is reported with category "cloned".
func (m *MiniMax) ListVoices(ctx context.Context) ([]Voice, error) {
	payload := map[string]interface{}{
		"voice_type": "voice_cloning",
	}
	// The list may arrive under different keys depending on API version.
	var result struct {
		BaseResp     baseResp       `json:"base_resp"`
		VoiceCloning []miniMaxVoice `json:"voice_cloning"`
		Voices       []miniMaxVoice `json:"voices"`
		Data         struct {
			VoiceCloning []miniMaxVoice `json:"voice_cloning"`
		} `json:"data"`
	}
	if err := m.postJSON(ctx, "/get_voice", payload, &result); err != nil {
		return nil, err
	}
	if !result.BaseResp.ok() {
		return nil, m.apiError(http.StatusOK, result.BaseResp)
	}

	entries := result.VoiceCloning
	if len(entries) == 0 {
		entries = result.Voices
	}
	if len(entries) == 0 {
		entries = result.Data.VoiceCloning
	}

	voices := make([]Voice, len(entries))
	for i, v := range entries {
		voices[i] = Voice{
			ID:       v.VoiceID,
			Name:     v.VoiceName,
			Category: "cloned",
		}
	}
	return voices, nil
}

type miniMaxVoice struct {
	VoiceID   string `json:"voice_id"`
	VoiceName string `json:"voice_name"`
}

// Synthesize converts text to MP3 audio with a cloned voice.
func (m *MiniMax) Synthesize(ctx context.Context, sreq SynthesisRequest) (*SynthesisResult, error) {
	start := time.Now()

	speed := clampSpeed(sreq.Speed, miniMaxMinSpeed, miniMaxMaxSpeed)

	payload := map[string]interface{}{
		"model": m.config.ModelID,
		"text":  sreq.Text,
		"voice_setting": map[string]interface{}{
			"voice_id": sreq.VoiceID,
			"speed":    speed,
			"vol":      1.0,
			"pitch":    0,
		},
		"audio_setting": map[string]interface{}{
			"format":      "mp3",
			"sample_rate": miniMaxSampleRate,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerMiniMax, fmt.Errorf("marshal payload: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, "POST", m.url("/t2a_v2"), bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerMiniMax, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, WrapError(providerMiniMax, fmt.Errorf("synthesis request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(providerMiniMax, fmt.Errorf("read response: %w", err))
	}

	var result struct {
		BaseResp  baseResp `json:"base_resp"`
		AudioFile string   `json:"audio_file"`
		Data      struct {
			AudioFile string `json:"audio_file"`
			Audio     string `json:"audio"`
		} `json:"data"`
	}
	_ = json.Unmarshal(raw, &result)

	if resp.StatusCode != http.StatusOK || !result.BaseResp.ok() {
		if expiredMessage(result.BaseResp.StatusMsg) {
			m.logger.Warn("voice gone during synthesis",
				"voice_id", sreq.VoiceID,
				"status_msg", result.BaseResp.StatusMsg,
			)
			return nil, WrapError(providerMiniMax, ErrVoiceExpired)
		}
		return nil, m.apiError(resp.StatusCode, result.BaseResp)
	}

	// The audio payload moves between fields across API versions.
	encoded := result.AudioFile
	if encoded == "" {
		encoded = result.Data.AudioFile
	}
	if encoded == "" {
		encoded = result.Data.Audio
	}
	if encoded == "" {
		m.logger.Error("synthesis returned no audio", "voice_id", sreq.VoiceID, "body_prefix", truncate(string(raw), 500))
		return nil, WrapError(providerMiniMax, ErrNoAudio)
	}

	audio, err := DecodeAudioPayload(encoded)
	if err != nil {
		return nil, WrapError(providerMiniMax, err)
	}

	m.logger.Debug("synthesized audio",
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

// Transcribe is not offered by MiniMax.
func (m *MiniMax) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	return nil, WrapError(providerMiniMax, ErrTranscribeUnsupported)
}

// Close releases resources held by the provider.
func (m *MiniMax) Close() error {
	m.client.CloseIdleConnections()
	return nil
}

// url appends the GroupId query parameter every MiniMax endpoint requires.
func (m *MiniMax) url(path string) string {
	return fmt.Sprintf("%s%s?GroupId=%s", m.baseURL, path, m.config.GroupID)
}

// postJSON performs a JSON POST and decodes the response into out.
func (m *MiniMax) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return WrapError(providerMiniMax, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.url(path), bytes.NewReader(body))
	if err != nil {
		return WrapError(providerMiniMax, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return WrapError(providerMiniMax, fmt.Errorf("request %s: %w", path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(providerMiniMax, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			BaseResp baseResp `json:"base_resp"`
		}
		_ = json.Unmarshal(raw, &envelope)
		return m.apiError(resp.StatusCode, envelope.BaseResp)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return WrapError(providerMiniMax, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// apiError builds an APIError from HTTP status plus the embedded base_resp.
func (m *MiniMax) apiError(httpStatus int, br baseResp) error {
	msg := br.StatusMsg
	if msg == "" {
		msg = http.StatusText(httpStatus)
	}
	return &APIError{
		StatusCode: httpStatus,
		Message:    msg,
		Code:       br.StatusCode,
		Provider:   providerMiniMax,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Verify MiniMax implements Provider at compile time.
var _ Provider = (*MiniMax)(nil)
