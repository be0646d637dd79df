package dispatch

import (
	"context"
	"fmt"

	"github.com/pai-voice/paivoiced/internal/player"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/sanitize"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// Dispatcher owns the once-selected engine, the fallback chain, the
// constructed back-ends and the cached player probe result. It is
// read-only after construction; the request path never re-probes.
type Dispatcher struct {
	Selected voiceconf.Engine
	Fallback []voiceconf.Engine
	Backends Backends
	Probe    probe.Result
}

// Dispatch runs the runtime dispatch rule for one request: try the
// selected engine, and on any failure retry exactly once against the
// local fallback chain in cached-selection order. Further failures are
// logged and swallowed — the request always resolves. voiceID is only
// consulted by the cloud engine, which embeds it in the upstream URL.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, prosody voiceconf.Prosody, volume float64, voiceID string) {
	if err := d.tryEngine(ctx, d.Selected, text, prosody, volume, voiceID); err == nil {
		return
	} else {
		log.Warn("primary engine failed, trying fallback chain", "engine", d.Selected.String(), "err", err)
	}

	for _, engine := range d.Fallback {
		if engine == d.Selected {
			continue
		}
		if err := d.tryEngine(ctx, engine, text, prosody, volume, voiceID); err == nil {
			return
		} else {
			log.Warn("fallback engine failed", "engine", engine.String(), "err", err)
		}
	}

	log.Error("all engines failed, notification will be silent")
}

func (d *Dispatcher) tryEngine(ctx context.Context, engine voiceconf.Engine, text string, prosody voiceconf.Prosody, volume float64, voiceID string) error {
	b, ok := d.Backends.For(engine)
	if !ok {
		return fmt.Errorf("engine %s not available", engine)
	}

	switch engine {
	case voiceconf.EngineCloud:
		audio, format, err := d.Backends.Cloud.SynthesizeVoice(ctx, voiceID, text, prosody)
		if err != nil {
			return err
		}
		return player.Play(ctx, d.Probe.CompressedPlayer, audio, format, volume)

	case voiceconf.EngineNeuralCPU:
		audio, format, err := b.Synthesize(ctx, text, voiceconf.Prosody{})
		if err != nil {
			return err
		}
		return player.Play(ctx, d.Probe.UncompressedPlayer, audio, format, volume)

	case voiceconf.EngineNeuralGPU:
		return d.runProgressive(ctx, b, text, volume)

	case voiceconf.EngineOSTTS:
		speaker, ok := b.(interface {
			Speak(ctx context.Context, text string) error
		})
		if !ok {
			return fmt.Errorf("os-tts backend does not implement Speak")
		}
		return speaker.Speak(ctx, text)

	default:
		return fmt.Errorf("no engine selected")
	}
}

func (d *Dispatcher) runProgressive(ctx context.Context, b interface {
	Synthesize(ctx context.Context, text string, prosody voiceconf.Prosody) ([]byte, voiceconf.Format, error)
}, text string, volume float64) error {
	sentences := sanitize.SplitSentences(text)
	if len(sentences) <= 1 {
		audio, format, err := b.Synthesize(ctx, text, voiceconf.Prosody{})
		if err != nil {
			return err
		}
		return player.Play(ctx, d.Probe.UncompressedPlayer, audio, format, volume)
	}

	pipeline := &Pipeline{
		Generate: func(ctx context.Context, sentence string) ([]byte, error) {
			audio, _, err := b.Synthesize(ctx, sentence, voiceconf.Prosody{})
			return audio, err
		},
		Play: func(ctx context.Context, audio []byte) error {
			return player.Play(ctx, d.Probe.UncompressedPlayer, audio, voiceconf.FormatUncompressed, volume)
		},
	}

	errs := pipeline.Run(ctx, sentences)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
