package audio_test

import (
	"encoding/binary"
	"testing"

	"github.com/unknownking07/voice-mirror/pkg/audio"
)

func TestEncodeWAV(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768}
	wav := audio.EncodeWAV(samples, 16000)

	t.Run("header fields", func(t *testing.T) {
		if len(wav) != 44+len(samples)*2 {
			t.Fatalf("total size = %d, want %d", len(wav), 44+len(samples)*2)
		}
		if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
			t.Error("missing RIFF/WAVE markers")
		}
		dataSize := len(samples) * 2
		if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+dataSize) {
			t.Errorf("chunk size = %d, want %d", got, 36+dataSize)
		}
		if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
			t.Errorf("channels = %d, want 1", got)
		}
		if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
			t.Errorf("sample rate = %d, want 16000", got)
		}
		if got := binary.LittleEndian.Uint32(wav[28:32]); got != 32000 {
			t.Errorf("byte rate = %d, want 32000", got)
		}
		if got := binary.LittleEndian.Uint16(wav[32:34]); got != 2 {
			t.Errorf("block align = %d, want 2", got)
		}
		if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
			t.Errorf("bits per sample = %d, want 16", got)
		}
		if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(dataSize) {
			t.Errorf("data size = %d, want %d", got, dataSize)
		}
	})

	t.Run("round trip recovers samples exactly", func(t *testing.T) {
		info, err := audio.DecodeWAV(wav)
		if err != nil {
			t.Fatalf("DecodeWAV: %v", err)
		}
		if info.SampleRate != 16000 || info.Channels != 1 {
			t.Errorf("decoded format = %d Hz %d ch", info.SampleRate, info.Channels)
		}
		if len(info.Samples) != len(samples) {
			t.Fatalf("sample count = %d, want %d", len(info.Samples), len(samples))
		}
		for i := range samples {
			if info.Samples[i] != samples[i] {
				t.Fatalf("sample %d = %d, want %d", i, info.Samples[i], samples[i])
			}
		}
	})
}

func TestEncodeWAVFloat(t *testing.T) {
	wav := audio.EncodeWAVFloat([]float32{0, 0.5, -0.5, 2.0, -2.0}, 16000)
	info, err := audio.DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}

	t.Run("clamps out of range values", func(t *testing.T) {
		if info.Samples[3] != 32767 {
			t.Errorf("sample above 1.0 = %d, want 32767", info.Samples[3])
		}
		if info.Samples[4] != -32767 {
			t.Errorf("sample below -1.0 = %d, want -32767", info.Samples[4])
		}
	})

	t.Run("quantizes in-range values", func(t *testing.T) {
		if info.Samples[0] != 0 {
			t.Errorf("zero sample = %d", info.Samples[0])
		}
		if got := info.Samples[1]; got < 16380 || got > 16387 {
			t.Errorf("half-scale sample = %d", got)
		}
	})
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", []byte("RIFF")},
		{"not riff", make([]byte, 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := audio.DecodeWAV(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
