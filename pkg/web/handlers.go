package web

import (
	"encoding/base64"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/unknownking07/voice-mirror/pkg/reflection"
	"github.com/unknownking07/voice-mirror/pkg/voice"
)

// previewText is spoken when a user auditions a freshly cloned voice.
const previewText = "Hello, this is a test of your cloned voice. If this sounds like you, your voice mirror is ready."

const expiredVoiceMessage = "Your voice clone has expired. Please re-clone your voice."

var errMiniMaxNotConfigured = errors.New("MiniMax API credentials not configured")

// handleCloneVoice creates a voice clone from an uploaded sample.
// Multipart fields: name, audio, optional provider. MiniMax uploads
// are transcoded to 16 kHz WAV first; ElevenLabs takes the browser
// recording as-is.
func (s *Server) handleCloneVoice(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	sample, filename, err := formFile(c, "audio")
	if err != nil || name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and audio file are required",
		})
	}

	provider, err := s.provider(c.FormValue("provider"))
	if err != nil {
		return providerError(c, err)
	}

	if provider.Name() == voice.ProviderMiniMax {
		wav, convErr := s.transcoder.ConvertToWAV(c.Context(), sample, formatHint(filename))
		if convErr != nil {
			s.logger.Error("clone sample conversion failed", "error", convErr)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Could not decode the audio sample",
			})
		}
		sample = wav
	}

	mgr := voice.NewCloneManager(provider, s.logger)
	voiceID, err := mgr.CreateClone(c.Context(), name, sample)
	if err != nil {
		s.logger.Error("clone failed", "provider", provider.Name(), "error", err)
		return upstreamError(c, err, "Voice cloning failed")
	}

	return c.JSON(fiber.Map{"voice_id": voiceID})
}

// handleDeleteVoice frees a clone slot. Deletion is best-effort; a
// failed upstream delete is logged but still answered ok, since the
// sweep on the next clone will catch it.
func (s *Server) handleDeleteVoice(c *fiber.Ctx) error {
	var req struct {
		VoiceID  string `json:"voiceId"`
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&req); err != nil || req.VoiceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "voiceId is required",
		})
	}

	provider, err := s.provider(req.Provider)
	if err != nil {
		return providerError(c, err)
	}

	if err := provider.DeleteVoice(c.Context(), req.VoiceID); err != nil {
		s.logger.Warn("delete voice failed", "voice_id", req.VoiceID, "error", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleVoices lists the provider's voices in simplified form.
func (s *Server) handleVoices(c *fiber.Ctx) error {
	provider, err := s.provider(c.Query("provider"))
	if err != nil {
		return providerError(c, err)
	}

	voices, err := provider.ListVoices(c.Context())
	if err != nil {
		s.logger.Error("list voices failed", "error", err)
		return upstreamError(c, err, "Failed to fetch voices")
	}
	return c.JSON(fiber.Map{"voices": voices})
}

// handlePreviewVoice synthesizes a fixed sentence and streams raw MP3.
func (s *Server) handlePreviewVoice(c *fiber.Ctx) error {
	var req struct {
		VoiceID  string `json:"voiceId"`
		Provider string `json:"provider"`
	}
	if err := c.BodyParser(&req); err != nil || req.VoiceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "voiceId is required",
		})
	}

	provider, err := s.provider(req.Provider)
	if err != nil {
		return providerError(c, err)
	}

	result, err := provider.Synthesize(c.Context(), voice.SynthesisRequest{
		Text:    previewText,
		VoiceID: req.VoiceID,
		Speed:   1.0,
	})
	if err != nil {
		if voice.IsVoiceExpired(err) {
			return expiredResponse(c, "", "")
		}
		s.logger.Error("preview synthesis failed", "error", err)
		return upstreamError(c, err, "Voice preview failed")
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Send(result.Audio)
}

// handleReflect runs the full pipeline. Multipart fields: audio or
// transcript, plus optional voiceId, speed, provider, systemPrompt.
func (s *Server) handleReflect(c *fiber.Ctx) error {
	req := &reflection.Request{
		Transcript:   strings.TrimSpace(c.FormValue("transcript")),
		SystemPrompt: c.FormValue("systemPrompt"),
		Speed:        parseSpeed(c.FormValue("speed")),
	}

	if req.Transcript == "" {
		sample, _, err := formFile(c, "audio")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Audio file is required",
			})
		}
		req.Audio = sample
	}

	req.VoiceID = c.FormValue("voiceId")
	if req.VoiceID == "" {
		req.VoiceID = s.defaultVoiceID
	}
	if req.VoiceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No voice ID configured. Please clone your voice first.",
		})
	}

	provider, err := s.provider(c.FormValue("provider"))
	if err != nil {
		return providerError(c, err)
	}

	res := s.pipeline.Run(c.Context(), provider, req)

	switch res.Outcome {
	case reflection.OutcomeDelivered:
		return c.JSON(fiber.Map{
			"transcript": res.Transcript,
			"reflection": res.Reflection,
			"audio":      base64.StdEncoding.EncodeToString(res.Audio),
		})

	case reflection.OutcomeDegraded:
		// Text still has value when only the voice step broke.
		return c.JSON(fiber.Map{
			"transcript": res.Transcript,
			"reflection": res.Reflection,
			"audio":      nil,
			"error":      "Voice synthesis failed, returning text only",
		})

	case reflection.OutcomeVoiceExpired:
		return expiredResponse(c, res.Transcript, res.Reflection)

	case reflection.OutcomeNoSpeech:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "no_speech",
			"message": reflection.NoSpeechMessage,
		})

	default:
		s.logger.Error("reflect pipeline failed", "request_id", res.ID, "error", res.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

// handleSpeak synthesizes arbitrary text without the reflect stages.
func (s *Server) handleSpeak(c *fiber.Ctx) error {
	var req struct {
		Text     string  `json:"text"`
		VoiceID  string  `json:"voiceId"`
		Speed    float64 `json:"speed"`
		Provider string  `json:"provider"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON body",
		})
	}
	if req.Text == "" || req.VoiceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text and voiceId are required",
		})
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}

	provider, err := s.provider(req.Provider)
	if err != nil {
		return providerError(c, err)
	}

	result, err := provider.Synthesize(c.Context(), voice.SynthesisRequest{
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Speed:   req.Speed,
	})
	if err != nil {
		if voice.IsVoiceExpired(err) {
			return expiredResponse(c, "", "")
		}
		s.logger.Error("speak synthesis failed", "error", err)
		return upstreamError(c, err, "Voice synthesis failed")
	}

	return c.JSON(fiber.Map{
		"audio": base64.StdEncoding.EncodeToString(result.Audio),
	})
}

// handleTranscribe converts one recording to text.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	sample, _, err := formFile(c, "audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Audio file is required",
		})
	}

	transcript, err := s.elevenlabs.Transcribe(c.Context(), sample)
	if err != nil {
		s.logger.Error("transcription failed", "error", err)
		return upstreamError(c, err, "Speech transcription failed")
	}

	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "no_speech",
			"message": reflection.NoSpeechMessage,
		})
	}
	return c.JSON(fiber.Map{"transcript": text})
}

// expiredResponse is the 410 envelope for a vanished clone slot. The
// transcript and reflection already computed ride along so the client
// can still show them.
func expiredResponse(c *fiber.Ctx, transcript, reflectionText string) error {
	body := fiber.Map{
		"error":   "voice_expired",
		"message": expiredVoiceMessage,
	}
	if transcript != "" {
		body["transcript"] = transcript
	}
	if reflectionText != "" {
		body["reflection"] = reflectionText
	}
	return c.Status(fiber.StatusGone).JSON(body)
}

// providerError maps provider-resolution failures to 4xx/5xx.
func providerError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if errors.Is(err, errMiniMaxNotConfigured) {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// upstreamError surfaces a provider failure, passing the upstream HTTP
// status through when one is known.
func upstreamError(c *fiber.Ctx, err error, fallback string) error {
	var apiErr *voice.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
		return c.Status(apiErr.StatusCode).JSON(fiber.Map{"error": apiErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}

// formFile reads one uploaded file fully into memory.
func formFile(c *fiber.Ctx, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

// formatHint maps an upload filename to an ffmpeg container name.
func formatHint(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webm":
		return "webm"
	case ".ogg", ".oga":
		return "ogg"
	case ".mp4", ".m4a":
		return "mp4"
	case ".mp3":
		return "mp3"
	default:
		return ""
	}
}

func parseSpeed(s string) float64 {
	if s == "" {
		return 1.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 1.0
	}
	return v
}
