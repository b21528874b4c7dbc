package reflection

import "errors"

// Sentinel errors for pipeline terminal conditions.
var (
	// ErrNoSpeech means transcription produced no usable text. This is
	// a user condition, not a system failure.
	ErrNoSpeech = errors.New("reflection: no speech detected")

	// ErrNoInput is returned when a request carries neither audio nor
	// a transcript.
	ErrNoInput = errors.New("reflection: audio or transcript required")
)
