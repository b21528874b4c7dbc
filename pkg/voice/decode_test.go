package voice_test

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/unknownking07/voice-mirror/pkg/voice"
)

// mp3Frame is a minimal buffer starting with an MP3 frame sync word.
var mp3Frame = append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 32)...)

func TestDecodeAudioPayload(t *testing.T) {
	t.Run("hex encoded MP3 accepted", func(t *testing.T) {
		encoded := hex.EncodeToString(mp3Frame)
		got, err := voice.DecodeAudioPayload(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, mp3Frame) {
			t.Error("decoded bytes do not match original")
		}
	})

	t.Run("hex encoded ID3 accepted", func(t *testing.T) {
		id3 := append([]byte("ID3"), make([]byte, 16)...)
		got, err := voice.DecodeAudioPayload(hex.EncodeToString(id3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, id3) {
			t.Error("decoded bytes do not match original")
		}
	})

	t.Run("base64 fallback when hex decode is not MP3", func(t *testing.T) {
		// Valid hex characters, but decodes to bytes without a frame
		// sync word, so base64 must win.
		encoded := base64.StdEncoding.EncodeToString(mp3Frame)
		got, err := voice.DecodeAudioPayload(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, mp3Frame) {
			t.Error("decoded bytes do not match original")
		}
	})

	t.Run("invalid payload rejected", func(t *testing.T) {
		if _, err := voice.DecodeAudioPayload("not valid in either encoding!!!"); err == nil {
			t.Error("expected error for undecodable payload")
		}
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		if _, err := voice.DecodeAudioPayload(""); err == nil {
			t.Error("expected error for empty payload")
		}
	})
}
