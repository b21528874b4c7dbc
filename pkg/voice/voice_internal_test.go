package voice

import (
	"strings"
	"testing"
	"time"
)

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		min, max float64
		want     float64
	}{
		{"within range", 1.0, 0.25, 4.0, 1.0},
		{"below elevenlabs min", 0.1, 0.25, 4.0, 0.25},
		{"above elevenlabs max", 5.0, 0.25, 4.0, 4.0},
		{"below minimax min", 0.25, 0.5, 2.0, 0.5},
		{"above minimax max", 3.0, 0.5, 2.0, 2.0},
		{"at lower bound", 0.5, 0.5, 2.0, 0.5},
		{"at upper bound", 2.0, 0.5, 2.0, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampSpeed(tt.speed, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("clampSpeed(%v, %v, %v) = %v, want %v",
					tt.speed, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestExpiredMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"voice not found", true},
		{"Voice ID is invalid", true},
		{"no available slot", true},
		{"resource not found", true},
		{"quota exceeded", false},
		{"internal error", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := expiredMessage(tt.msg); got != tt.want {
				t.Errorf("expiredMessage(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestGenerateVoiceID(t *testing.T) {
	m, err := NewMiniMax(WithAPIKey("key"), WithGroupID("group"))
	if err != nil {
		t.Fatalf("NewMiniMax: %v", err)
	}
	fixed := time.UnixMilli(1700000000123)
	m.now = func() time.Time { return fixed }

	t.Run("slug and timestamp", func(t *testing.T) {
		got := m.GenerateVoiceID("My Voice")
		want := "mirror_my_voice_1700000000123"
		if got != want {
			t.Errorf("GenerateVoiceID = %q, want %q", got, want)
		}
	})

	t.Run("collapses whitespace runs", func(t *testing.T) {
		got := m.GenerateVoiceID("  Two   Words  ")
		if !strings.HasPrefix(got, "mirror_two_words_") {
			t.Errorf("GenerateVoiceID = %q, want mirror_two_words_ prefix", got)
		}
	})
}
