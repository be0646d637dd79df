// Package backend implements the four TTS back-ends behind one shared
// contract: synthesize(text, prosody) -> (audio_bytes, format).
package backend

import (
	"context"

	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// Backend is the contract every TTS engine implements. OS-TTS speaks
// directly and returns no bytes; see Speaker below.
type Backend interface {
	Synthesize(ctx context.Context, text string, prosody voiceconf.Prosody) ([]byte, voiceconf.Format, error)
}

// Speaker is implemented only by the os-tts back-end: it has no
// intermediate buffer and speaks directly, returning only when the tool
// exits.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}
