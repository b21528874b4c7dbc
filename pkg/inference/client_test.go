package inference_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/unknownking07/voice-mirror/pkg/inference"
)

func newClient(t *testing.T, handler http.Handler, opts ...inference.Option) *inference.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []inference.Option{
		inference.WithAPIKey("test-key"),
		inference.WithBaseURL(srv.URL),
		inference.WithFallbackDelay(time.Millisecond),
	}
	c, err := inference.NewClient(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func completion(text string) map[string]interface{} {
	return map[string]interface{}{
		"model":       "model-a",
		"content":     []map[string]string{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 20},
	}
}

func TestClientValidation(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		if _, err := inference.NewClient(); !errors.Is(err, inference.ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("requires models", func(t *testing.T) {
		_, err := inference.NewClient(
			inference.WithAPIKey("k"),
			inference.WithModels(),
		)
		if !errors.Is(err, inference.ErrNoModels) {
			t.Errorf("expected ErrNoModels, got %v", err)
		}
	})
}

func TestChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var payload struct {
			Model     string              `json:"model"`
			MaxTokens int                 `json:"max_tokens"`
			System    string              `json:"system"`
			Messages  []inference.Message `json:"messages"`
		}
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/messages" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("x-api-key") != "test-key" {
				t.Error("missing api key header")
			}
			if r.Header.Get("anthropic-version") == "" {
				t.Error("missing anthropic-version header")
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			json.NewEncoder(w).Encode(completion("a thought"))
		}), inference.WithModels("model-a"))

		resp, err := c.Chat(context.Background(), &inference.ChatRequest{
			System:   "be wise",
			Messages: []inference.Message{{Role: inference.RoleUser, Content: "hello"}},
		})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if resp.Text != "a thought" {
			t.Errorf("text = %q", resp.Text)
		}
		if payload.System != "be wise" {
			t.Errorf("system = %q", payload.System)
		}
		if payload.MaxTokens != 512 {
			t.Errorf("max_tokens = %d, want default 512", payload.MaxTokens)
		}
		if resp.Usage.OutputTokens != 20 {
			t.Errorf("usage = %+v", resp.Usage)
		}
	})

	t.Run("falls back on 529 then 503", func(t *testing.T) {
		var models []string
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload struct {
				Model string `json:"model"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			models = append(models, payload.Model)
			switch payload.Model {
			case "model-a":
				w.WriteHeader(529)
			case "model-b":
				w.WriteHeader(http.StatusServiceUnavailable)
			default:
				json.NewEncoder(w).Encode(completion("third time lucky"))
			}
		}), inference.WithModels("model-a", "model-b", "model-c"))

		resp, err := c.Chat(context.Background(), &inference.ChatRequest{
			Messages: []inference.Message{{Role: inference.RoleUser, Content: "x"}},
		})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if resp.Text != "third time lucky" {
			t.Errorf("text = %q", resp.Text)
		}
		if len(models) != 3 {
			t.Errorf("models tried = %v", models)
		}
	})

	t.Run("other statuses are terminal", func(t *testing.T) {
		calls := 0
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"type": "invalid_request_error", "message": "bad request"},
			})
		}), inference.WithModels("model-a", "model-b"))

		_, err := c.Chat(context.Background(), &inference.ChatRequest{
			Messages: []inference.Message{{Role: inference.RoleUser, Content: "x"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		var apiErr *inference.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
			t.Errorf("expected 400 APIError, got %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1 (no fallback on 400)", calls)
		}
	})

	t.Run("all models exhausted", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(529)
		}), inference.WithModels("model-a", "model-b"))

		_, err := c.Chat(context.Background(), &inference.ChatRequest{
			Messages: []inference.Message{{Role: inference.RoleUser, Content: "x"}},
		})
		if !errors.Is(err, inference.ErrAllModelsFailed) {
			t.Errorf("expected ErrAllModelsFailed, got %v", err)
		}
	})

	t.Run("empty completion is terminal", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(completion("   "))
		}), inference.WithModels("model-a", "model-b"))

		_, err := c.Chat(context.Background(), &inference.ChatRequest{
			Messages: []inference.Message{{Role: inference.RoleUser, Content: "x"}},
		})
		if !errors.Is(err, inference.ErrEmptyCompletion) {
			t.Errorf("expected ErrEmptyCompletion, got %v", err)
		}
	})
}
