// Package reflection runs the core pipeline: transcribe the user's
// recording, generate a reflection in their inner voice, and speak it
// back through their cloned voice. Stages are strictly sequential per
// request; only the language-model stage retries (via its own model
// fallback list).
package reflection

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unknownking07/voice-mirror/pkg/inference"
	"github.com/unknownking07/voice-mirror/pkg/voice"
)

// Stage identifies where a request is in the pipeline.
type Stage string

const (
	StageReceived     Stage = "received"
	StageTranscribing Stage = "transcribing"
	StageReflecting   Stage = "reflecting"
	StageSynthesizing Stage = "synthesizing"
	StageReclaiming   Stage = "reclaiming"
)

// Outcome is the terminal state of a pipeline run.
type Outcome string

const (
	// OutcomeDelivered means every stage succeeded and audio is present.
	OutcomeDelivered Outcome = "delivered"

	// OutcomeDegraded means synthesis failed but transcript and
	// reflection are still delivered. Partial value beats total failure
	// when only the voice step broke.
	OutcomeDegraded Outcome = "degraded"

	// OutcomeVoiceExpired means the target clone slot no longer exists.
	// Transcript and reflection are preserved on the result.
	OutcomeVoiceExpired Outcome = "voice_expired"

	// OutcomeNoSpeech means transcription found nothing to reflect on.
	OutcomeNoSpeech Outcome = "no_speech"

	// OutcomeFailed means transcription or reflection failed outright.
	OutcomeFailed Outcome = "failed"
)

// Request is one reflection pipeline run.
type Request struct {
	// Audio is the user's recording. Ignored when Transcript is set.
	Audio []byte

	// Transcript skips the transcription stage when non-empty. The
	// journal flow reuses text transcribed earlier.
	Transcript string

	// VoiceID is the target voice for synthesis.
	VoiceID string

	// Speed is the playback speed multiplier. Zero means provider default.
	Speed float64

	// SystemPrompt overrides MirrorSystemPrompt when non-empty.
	SystemPrompt string
}

// Result is the outcome of a pipeline run. Transcript and Reflection
// are populated as far as the pipeline got, regardless of outcome.
type Result struct {
	ID         string
	Outcome    Outcome
	Transcript string
	Reflection string

	// Audio is the synthesized MP3. Nil unless Outcome is delivered.
	Audio []byte

	// Model is the inference model that produced the reflection.
	Model string

	// Err is the error behind a degraded, expired, or failed outcome.
	Err error

	// ElapsedMs is total pipeline time including reclamation.
	ElapsedMs int64
}

// Event is a stage transition published to the live feed.
type Event struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

// EventFunc receives stage transitions. Implementations must not block.
type EventFunc func(Event)

// Pipeline wires the transcriber and language model together with a
// per-request synthesis provider.
type Pipeline struct {
	transcriber voice.Provider
	llm         inference.Provider
	logger      *slog.Logger
	events      EventFunc
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithEvents sets the stage-transition callback.
func WithEvents(fn EventFunc) PipelineOption {
	return func(p *Pipeline) {
		p.events = fn
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline. transcriber handles speech-to-text
// and llm generates reflections; the synthesis provider varies per
// request and is passed to Run.
func NewPipeline(transcriber voice.Provider, llm inference.Provider, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		transcriber: transcriber,
		llm:         llm,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "reflection.pipeline")
	return p
}

// Run executes the pipeline for one request. synth is the voice
// provider resolved from the request's provider field. The returned
// Result always carries whatever transcript and reflection were
// computed before a failure.
//
// On a delivered outcome the used clone slot is reclaimed (direct
// delete plus orphan sweep) before Run returns, so a response is never
// written while the slot is still occupied.
func (p *Pipeline) Run(ctx context.Context, synth voice.Provider, req *Request) *Result {
	start := time.Now()
	res := &Result{ID: uuid.NewString()}
	logger := p.logger.With("request_id", res.ID)

	finish := func(outcome Outcome, err error) *Result {
		res.Outcome = outcome
		res.Err = err
		res.ElapsedMs = time.Since(start).Milliseconds()
		p.publish(res.ID, string(outcome), "")
		logger.Info("pipeline finished",
			"outcome", outcome,
			"elapsed_ms", res.ElapsedMs,
		)
		return res
	}

	p.publish(res.ID, string(StageReceived), "")

	// Transcribe, unless the caller already has a transcript.
	if req.Transcript != "" {
		res.Transcript = strings.TrimSpace(req.Transcript)
		if res.Transcript == "" {
			return finish(OutcomeNoSpeech, ErrNoSpeech)
		}
	} else {
		if len(req.Audio) == 0 {
			return finish(OutcomeFailed, ErrNoInput)
		}
		p.publish(res.ID, string(StageTranscribing), "")
		transcript, err := p.transcriber.Transcribe(ctx, req.Audio)
		if err != nil {
			logger.Error("transcription failed", "error", err)
			return finish(OutcomeFailed, err)
		}
		res.Transcript = strings.TrimSpace(transcript.Text)
		if res.Transcript == "" {
			return finish(OutcomeNoSpeech, ErrNoSpeech)
		}
		logger.Debug("transcribed", "chars", len(res.Transcript), "latency_ms", transcript.LatencyMs)
	}

	// Reflect.
	p.publish(res.ID, string(StageReflecting), "")
	system := req.SystemPrompt
	if system == "" {
		system = MirrorSystemPrompt
	}
	chat, err := p.llm.Chat(ctx, &inference.ChatRequest{
		System: system,
		Messages: []inference.Message{
			{Role: inference.RoleUser, Content: res.Transcript},
		},
	})
	if err != nil {
		logger.Error("reflection failed", "error", err)
		return finish(OutcomeFailed, err)
	}
	res.Reflection = strings.TrimSpace(chat.Text)
	res.Model = chat.Model
	logger.Debug("reflected", "model", chat.Model, "latency_ms", chat.LatencyMs)

	// Synthesize. Failures here never discard the text stages.
	p.publish(res.ID, string(StageSynthesizing), "")
	synthRes, err := synth.Synthesize(ctx, voice.SynthesisRequest{
		Text:    res.Reflection,
		VoiceID: req.VoiceID,
		Speed:   req.Speed,
	})
	if err != nil {
		if voice.IsVoiceExpired(err) {
			logger.Warn("voice expired during synthesis", "voice_id", req.VoiceID)
			return finish(OutcomeVoiceExpired, err)
		}
		logger.Warn("synthesis failed, degrading", "error", err)
		return finish(OutcomeDegraded, err)
	}
	res.Audio = synthRes.Audio
	logger.Debug("synthesized", "bytes", len(res.Audio), "latency_ms", synthRes.LatencyMs)

	// Reclaim the slot before finalizing so the next clone never hits
	// a full quota.
	p.publish(res.ID, string(StageReclaiming), req.VoiceID)
	mgr := voice.NewCloneManager(synth, logger)
	mgr.Reclaim(ctx, req.VoiceID)

	return finish(OutcomeDelivered, nil)
}

// publish sends a stage event if a callback is configured.
func (p *Pipeline) publish(requestID, stage, detail string) {
	if p.events == nil {
		return
	}
	p.events(Event{
		RequestID: requestID,
		Stage:     stage,
		Detail:    detail,
		Time:      time.Now(),
	})
}
