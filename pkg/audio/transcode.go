package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Transcoder converts compressed browser recordings (WebM/Opus, MP4,
// Ogg) to 16 kHz mono WAV via ffmpeg. ffmpeg handles container demux
// and codec decode; downmix and resampling happen here so the output
// path matches the raw-PCM path exactly.
type Transcoder struct {
	// FFmpegPath overrides the ffmpeg binary location. Empty means
	// resolve "ffmpeg" from PATH.
	FFmpegPath string

	// DecodeRate is the rate ffmpeg decodes to before local
	// resampling. Zero uses 48000, the WebM/Opus native rate.
	DecodeRate int

	logger *slog.Logger
}

// NewTranscoder creates a transcoder using ffmpeg from PATH.
func NewTranscoder(logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcoder{
		DecodeRate: 48000,
		logger:     logger.With("component", "audio.transcoder"),
	}
}

// Available reports whether the ffmpeg binary can be resolved.
func (t *Transcoder) Available() bool {
	_, err := exec.LookPath(t.binary())
	return err == nil
}

// ConvertToWAV decodes src and returns a 16 kHz mono 16-bit WAV.
// formatHint is a container name for ffmpeg ("webm", "ogg", "mp4");
// empty lets ffmpeg probe the stream.
func (t *Transcoder) ConvertToWAV(ctx context.Context, src []byte, formatHint string) ([]byte, error) {
	if len(src) == 0 {
		return nil, &ConversionError{Stage: "input", Err: fmt.Errorf("empty source")}
	}

	// If the caller already sent WAV, normalize it locally without
	// shelling out.
	if info, err := DecodeWAV(src); err == nil {
		return t.normalize(info), nil
	}

	decodeRate := t.DecodeRate
	if decodeRate == 0 {
		decodeRate = 48000
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	if formatHint != "" {
		args = append(args, "-f", formatHint)
	}
	args = append(args,
		"-i", "pipe:0",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", fmt.Sprint(decodeRate),
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, t.binary(), args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		t.logger.Error("ffmpeg decode failed", "error", err, "detail", truncate(detail, 200))
		return nil, &ConversionError{Stage: "decode", Detail: detail, Err: err}
	}

	pcm := stdout.Bytes()
	if len(pcm) < 2 {
		return nil, &ConversionError{Stage: "decode", Err: fmt.Errorf("no audio stream in source")}
	}

	samples := Resample(BytesToSamples(pcm), decodeRate, SampleRate)
	t.logger.Debug("transcoded recording",
		"input_bytes", len(src),
		"output_samples", len(samples),
	)
	return EncodeWAV(samples, SampleRate), nil
}

// normalize downmixes and resamples decoded WAV to the canonical rate.
func (t *Transcoder) normalize(info *WAVInfo) []byte {
	samples := DownmixToMono(info.Samples, info.Channels)
	samples = Resample(samples, info.SampleRate, SampleRate)
	return EncodeWAV(samples, SampleRate)
}

func (t *Transcoder) binary() string {
	if t.FFmpegPath != "" {
		return t.FFmpegPath
	}
	return "ffmpeg"
}

// ConversionError describes a failed transcode.
type ConversionError struct {
	// Stage is where the failure happened ("input", "decode").
	Stage string

	// Detail carries ffmpeg's stderr output when present.
	Detail string

	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("audio: %s failed: %v (%s)", e.Stage, e.Err, truncate(e.Detail, 120))
	}
	return fmt.Sprintf("audio: %s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
