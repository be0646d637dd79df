// Package daemon assembles config, probes, dispatch and the audio queue
// into a single immutable value. Replaces the teacher's mutable
// package-level globals (viper defaults read ad hoc from many call
// sites) with one value constructed once at start-up and passed down by
// reference. The only field reassigned after New returns is Config.Port,
// which the command-line --port flag overrides before the server starts.
package daemon

import (
	"context"

	"github.com/pai-voice/paivoiced/internal/config"
	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/dispatch"
	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/notify"
	"github.com/pai-voice/paivoiced/internal/platform"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/queue"
	"github.com/pai-voice/paivoiced/internal/sanitize"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

var log = dlog.For("daemon")

// Daemon is the fully wired, read-only runtime state shared by the HTTP
// handlers and the queue consumer.
type Daemon struct {
	Config     config.Config
	Probe      probe.Result
	Platform   platform.Info
	Dispatcher *dispatch.Dispatcher
	Queue      *queue.Queue
	RateLimit  *queue.RateLimiter
}

// New loads configuration, runs the start-up probes, selects the engine
// and wires the serial queue's consumer loop. The returned Daemon is
// ready to serve; nothing it exposes is mutated afterward.
func New(ctx context.Context) (*Daemon, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	probed := probe.RunAll(ctx, cfg)

	selected := dispatch.Select(cfg, probed)
	fallback := dispatch.FallbackChain(probed)
	backends := dispatch.Build(cfg, probed)

	d := &Daemon{
		Config:   cfg,
		Probe:    probed,
		Platform: probed.Platform,
		Dispatcher: &dispatch.Dispatcher{
			Selected: selected,
			Fallback: fallback,
			Backends: backends,
			Probe:    probed,
		},
		RateLimit: queue.NewRateLimiter(),
	}

	d.Queue = queue.New(ctx, d.processItem)
	return d, nil
}

// processItem is the serial queue's consumer handler: it runs the
// external-audio check, then dispatches synthesis and playback for one
// queued request.
func (d *Daemon) processItem(ctx context.Context, item *queue.Item) {
	if queue.ForeignAudioActive(ctx, d.Platform, d.Probe.UncompressedPlayer.Name, voiceconf.FormatUncompressed.Extension()) {
		log.Info("foreign audio active, skipping queued item")
		return
	}

	prosody, _ := item.Prosody.(voiceconf.Prosody)
	d.Dispatcher.Dispatch(ctx, item.Text, prosody, item.Volume, item.VoiceID)
}

// Enqueue validates and sanitises a notify request, resolves its prosody,
// and hands it to the serial queue. It returns the error to surface to
// the HTTP caller (nil on success) — the queue itself never returns
// errors past this point.
func (d *Daemon) Enqueue(ctx context.Context, req voiceconf.NotifyRequest) error {
	rawTitle := req.Title
	if rawTitle == "" {
		rawTitle = d.Config.OwnerName
	}
	if rawTitle == "" {
		rawTitle = voiceconf.DefaultTitle
	}
	rawMessage := req.Message
	if rawMessage == "" {
		rawMessage = voiceconf.DefaultMessage
	}

	title, reason, ok := sanitize.ValidateField(rawTitle)
	if !ok {
		return &daemonerr.InvalidInput{Field: "title", Reason: reason}
	}
	message, reason, ok := sanitize.ValidateField(rawMessage)
	if !ok {
		return &daemonerr.InvalidInput{Field: "message", Reason: reason}
	}

	notify.Send(ctx, title, message)

	if !req.VoiceEnabledOrDefault() {
		return nil
	}

	voiceID := req.ResolvedVoiceID()
	if voiceID == "" {
		voiceID = d.Config.DefaultVoiceID
	}

	voiceCfg := d.Config.Voices[voiceID]
	override := voiceconf.Prosody{}
	if req.VoiceSettings != nil {
		override = *req.VoiceSettings
	}
	prosody := voiceconf.Resolve(voiceCfg.Prosody, override)

	volume := 1.0
	if prosody.Volume != nil {
		volume = *prosody.Volume
	}
	if req.Volume != nil {
		volume = *req.Volume
	}

	spoken := sanitize.PrepareForSpeech(message, d.Config.Pronunciations)

	d.Queue.Enqueue(&queue.Item{
		Text:    spoken,
		Volume:  volume,
		Prosody: prosody,
		VoiceID: voiceID,
	})
	return nil
}
