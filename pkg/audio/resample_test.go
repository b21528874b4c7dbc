package audio_test

import (
	"testing"

	"github.com/unknownking07/voice-mirror/pkg/audio"
)

func TestResample(t *testing.T) {
	t.Run("same rate is passthrough", func(t *testing.T) {
		samples := []int16{1, 2, 3, 4}
		got := audio.Resample(samples, 16000, 16000)
		if len(got) != 4 {
			t.Errorf("length = %d, want 4", len(got))
		}
	})

	t.Run("downsample halves length", func(t *testing.T) {
		samples := make([]int16, 48000)
		got := audio.Resample(samples, 48000, 16000)
		if len(got) != 16000 {
			t.Errorf("length = %d, want 16000", len(got))
		}
	})

	t.Run("upsample doubles length", func(t *testing.T) {
		samples := make([]int16, 8000)
		got := audio.Resample(samples, 8000, 16000)
		if len(got) != 16000 {
			t.Errorf("length = %d, want 16000", len(got))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := audio.Resample(nil, 48000, 16000); len(got) != 0 {
			t.Errorf("length = %d, want 0", len(got))
		}
	})
}

func TestBytesSamplesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	got := audio.BytesToSamples(audio.SamplesToBytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDownmixToMono(t *testing.T) {
	t.Run("stereo averages pairs", func(t *testing.T) {
		stereo := []int16{100, 200, -100, -200}
		mono := audio.DownmixToMono(stereo, 2)
		if len(mono) != 2 {
			t.Fatalf("length = %d, want 2", len(mono))
		}
		if mono[0] != 150 || mono[1] != -150 {
			t.Errorf("mono = %v, want [150 -150]", mono)
		}
	})

	t.Run("mono is passthrough", func(t *testing.T) {
		samples := []int16{1, 2, 3}
		if got := audio.DownmixToMono(samples, 1); len(got) != 3 {
			t.Errorf("length = %d, want 3", len(got))
		}
	})
}
