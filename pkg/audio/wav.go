// Package audio provides PCM utilities for the voice pipeline: WAV
// encoding for clone samples, sample-rate conversion, and transcoding
// of browser recordings into the 16 kHz mono format the voice
// providers expect.
package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	// SampleRate is the canonical rate for clone samples.
	SampleRate = 16000

	// wavHeaderSize is the fixed RIFF/fmt/data header length.
	wavHeaderSize = 44
)

// EncodeWAV wraps 16-bit mono PCM samples in a RIFF WAV container at
// the given sample rate.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, wavHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(buf[22:24], 1)  // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(s))
	}
	return buf
}

// EncodeWAVFloat quantizes float samples in [-1, 1] to 16-bit PCM and
// wraps them in a WAV container. Out-of-range values are clamped
// rather than wrapped.
func EncodeWAVFloat(samples []float32, sampleRate int) []byte {
	pcm := make([]int16, len(samples))
	for i, f := range samples {
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		pcm[i] = int16(f * 32767)
	}
	return EncodeWAV(pcm, sampleRate)
}

// WAVInfo describes a decoded WAV file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// DecodeWAV parses a PCM WAV file. Only 16-bit PCM is supported.
func DecodeWAV(data []byte) (*WAVInfo, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("wav: truncated header (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	// Walk chunks; fmt and data are not guaranteed to sit at fixed
	// offsets when metadata chunks are present.
	var (
		sampleRate int
		channels   int
		bits       int
		pcm        []byte
	)
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav: short fmt chunk")
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != 1 {
				return nil, fmt.Errorf("wav: unsupported format %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+size]
		}
		pos = body + size
		if size%2 == 1 {
			pos++ // chunks are word aligned
		}
	}

	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("wav: missing fmt chunk")
	}
	if bits != 16 {
		return nil, fmt.Errorf("wav: unsupported bit depth %d (want 16)", bits)
	}
	if pcm == nil {
		return nil, fmt.Errorf("wav: missing data chunk")
	}

	return &WAVInfo{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    BytesToSamples(pcm),
	}, nil
}
