package voice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unknownking07/voice-mirror/pkg/voice"
)

func newElevenLabs(t *testing.T, handler http.Handler) (*voice.ElevenLabs, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := voice.NewElevenLabs(
		voice.WithAPIKey("test-key"),
		voice.WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("NewElevenLabs: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p, srv
}

func TestElevenLabsRequiresAPIKey(t *testing.T) {
	if _, err := voice.NewElevenLabs(); err == nil {
		t.Error("expected error without API key")
	}
}

func TestElevenLabsCloneVoice(t *testing.T) {
	p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("name"); got != "Alice" {
			t.Errorf("name = %q, want Alice", got)
		}
		if _, _, err := r.FormFile("files"); err != nil {
			t.Errorf("files field missing: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"voice_id": "v-123"})
	}))

	id, err := p.CloneVoice(context.Background(), "Alice", []byte("webm-bytes"))
	if err != nil {
		t.Fatalf("CloneVoice: %v", err)
	}
	if id != "v-123" {
		t.Errorf("voice id = %q, want v-123", id)
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	t.Run("clamps speed into range", func(t *testing.T) {
		var payload struct {
			Text          string `json:"text"`
			ModelID       string `json:"model_id"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarity_boost"`
				Speed           float64 `json:"speed"`
			} `json:"voice_settings"`
		}
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/text-to-speech/v-1/stream" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			w.Write(mp3Frame)
		}))

		result, err := p.Synthesize(context.Background(), voice.SynthesisRequest{
			Text:    "hello",
			VoiceID: "v-1",
			Speed:   10.0,
		})
		if err != nil {
			t.Fatalf("Synthesize: %v", err)
		}
		if payload.VoiceSettings.Speed != 4.0 {
			t.Errorf("speed = %v, want clamped 4.0", payload.VoiceSettings.Speed)
		}
		if payload.ModelID != voice.ModelMultilingualV2 {
			t.Errorf("model = %q", payload.ModelID)
		}
		if payload.VoiceSettings.Stability != 0.5 || payload.VoiceSettings.SimilarityBoost != 0.75 {
			t.Errorf("voice settings = %+v", payload.VoiceSettings)
		}
		if len(result.Audio) == 0 {
			t.Error("expected audio bytes")
		}
		if result.CharCount != 5 {
			t.Errorf("char count = %d, want 5", result.CharCount)
		}
	})

	t.Run("404 means voice expired", func(t *testing.T) {
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"detail": map[string]string{"message": "voice does not exist"},
			})
		}))

		_, err := p.Synthesize(context.Background(), voice.SynthesisRequest{Text: "x", VoiceID: "gone"})
		if !voice.IsVoiceExpired(err) {
			t.Errorf("expected voice expired, got %v", err)
		}
	})

	t.Run("400 with voice message means expired", func(t *testing.T) {
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"detail": map[string]string{"message": "The voice_id is invalid"},
			})
		}))

		_, err := p.Synthesize(context.Background(), voice.SynthesisRequest{Text: "x", VoiceID: "gone"})
		if !voice.IsVoiceExpired(err) {
			t.Errorf("expected voice expired, got %v", err)
		}
	})

	t.Run("other failures surface as APIError", func(t *testing.T) {
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"detail": map[string]string{"message": "bad key"},
			})
		}))

		_, err := p.Synthesize(context.Background(), voice.SynthesisRequest{Text: "x", VoiceID: "v"})
		apiErr, ok := err.(*voice.APIError)
		if !ok {
			t.Fatalf("expected APIError, got %T: %v", err, err)
		}
		if !apiErr.IsUnauthorized() {
			t.Errorf("expected unauthorized, got status %d", apiErr.StatusCode)
		}
		if apiErr.Message != "bad key" {
			t.Errorf("message = %q", apiErr.Message)
		}
	})
}

func TestElevenLabsListVoices(t *testing.T) {
	p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"voices": []map[string]interface{}{
				{
					"voice_id": "stock-1",
					"name":     "Rachel",
					"category": "premade",
					"labels":   map[string]string{"accent": "american", "gender": "female"},
				},
				{
					"voice_id":    "clone-1",
					"name":        "Alice",
					"category":    "cloned",
					"preview_url": "https://example.com/p.mp3",
				},
			},
		})
	}))

	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(voices))
	}
	if voices[0].IsClone() {
		t.Error("premade voice reported as clone")
	}
	if voices[0].Accent != "american" || voices[0].Gender != "female" {
		t.Errorf("labels not mapped: %+v", voices[0])
	}
	if !voices[1].IsClone() {
		t.Error("cloned voice not reported as clone")
	}
	if voices[1].PreviewURL != "https://example.com/p.mp3" {
		t.Errorf("preview url = %q", voices[1].PreviewURL)
	}
}

func TestElevenLabsTranscribe(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/speech-to-text" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if got := r.FormValue("model_id"); got != voice.ModelScribeV1 {
				t.Errorf("model_id = %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"text": "  hello world  "})
		}))

		tr, err := p.Transcribe(context.Background(), []byte("audio"))
		if err != nil {
			t.Fatalf("Transcribe: %v", err)
		}
		if tr.Text != "hello world" {
			t.Errorf("text = %q, want trimmed", tr.Text)
		}
	})

	t.Run("silence yields empty text", func(t *testing.T) {
		p, _ := newElevenLabs(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"text": "   "})
		}))

		tr, err := p.Transcribe(context.Background(), []byte("audio"))
		if err != nil {
			t.Fatalf("Transcribe: %v", err)
		}
		if tr.Text != "" {
			t.Errorf("text = %q, want empty", tr.Text)
		}
	})
}
