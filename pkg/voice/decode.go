package voice

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DecodeAudioPayload decodes a synthesized-audio string whose encoding
// the provider does not declare. MiniMax usually returns hex but
// occasionally base64, so the hex decoding is validated against MP3
// magic bytes and base64 is the fallback.
func DecodeAudioPayload(encoded string) ([]byte, error) {
	if decoded, err := hex.DecodeString(encoded); err == nil && looksLikeMP3(decoded) {
		return decoded, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("audio payload is neither valid hex MP3 nor base64: %w", err)
	}
	if len(decoded) == 0 {
		return nil, ErrNoAudio
	}
	return decoded, nil
}

// looksLikeMP3 reports whether buf starts like an MP3 stream: either a
// frame sync word (0xFF with the top three bits of the next byte set)
// or an ID3v2 tag header.
func looksLikeMP3(buf []byte) bool {
	if len(buf) <= 10 {
		return false
	}
	if buf[0] == 0xFF && buf[1]&0xE0 == 0xE0 {
		return true
	}
	return buf[0] == 'I' && buf[1] == 'D' && buf[2] == '3'
}
