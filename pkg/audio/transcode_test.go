package audio_test

import (
	"context"
	"testing"

	"github.com/unknownking07/voice-mirror/pkg/audio"
)

func TestConvertToWAV(t *testing.T) {
	tr := audio.NewTranscoder(nil)

	t.Run("empty input rejected", func(t *testing.T) {
		if _, err := tr.ConvertToWAV(context.Background(), nil, ""); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("wav input normalized without ffmpeg", func(t *testing.T) {
		// 48 kHz stereo in, 16 kHz mono out; no external binary needed.
		stereo := make([]int16, 4800*2)
		src := stereoWAV(stereo, 48000)

		out, err := tr.ConvertToWAV(context.Background(), src, "")
		if err != nil {
			t.Fatalf("ConvertToWAV: %v", err)
		}
		info, err := audio.DecodeWAV(out)
		if err != nil {
			t.Fatalf("DecodeWAV: %v", err)
		}
		if info.SampleRate != audio.SampleRate {
			t.Errorf("sample rate = %d, want %d", info.SampleRate, audio.SampleRate)
		}
		if info.Channels != 1 {
			t.Errorf("channels = %d, want 1", info.Channels)
		}
		// 4800 frames at 48 kHz resampled to 16 kHz is 1600 samples.
		if len(info.Samples) != 1600 {
			t.Errorf("samples = %d, want 1600", len(info.Samples))
		}
	})
}

// stereoWAV builds a 2-channel 16-bit WAV from interleaved samples.
func stereoWAV(samples []int16, rate int) []byte {
	wav := audio.EncodeWAV(samples, rate)
	wav[22] = 2 // channels
	byteRate := uint32(rate * 4)
	wav[28] = byte(byteRate)
	wav[29] = byte(byteRate >> 8)
	wav[30] = byte(byteRate >> 16)
	wav[31] = byte(byteRate >> 24)
	wav[32] = 4 // block align
	return wav
}
