package queue

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pai-voice/paivoiced/internal/platform"
)

const externalAudioQueryTimeout = 2 * time.Second

// stream is one entry from the platform audio daemon's stream listing.
type stream struct {
	applicationName string
	mediaName       string
}

// ForeignAudioActive reports whether any audio stream currently playing on
// the host did not originate from this daemon. ownPlayer is the process
// name of the probed uncompressed-audio player candidate (the one this
// daemon's own playback spawns); ext is its file extension, used to match
// the temp-file naming pattern this daemon writes (player.TempFilePrefix).
//
// The query only exists on platforms with a PulseAudio-compatible stream
// listing; elsewhere this always reports false (proceed). A query error is
// treated the same way: fail-open, since a listing failure says nothing
// about whether foreign audio is actually playing.
func ForeignAudioActive(ctx context.Context, info platform.Info, ownPlayer, ext string) bool {
	if info.AudioSubsystem != platform.SubsystemPulseAudio {
		return false
	}

	streams, err := listPulseAudioStreams(ctx)
	if err != nil {
		log.Warn("external audio query failed, proceeding", "err", err)
		return false
	}

	prefix := "voice-"
	for _, s := range streams {
		if s.applicationName == ownPlayer && strings.HasPrefix(s.mediaName, prefix) && strings.HasSuffix(s.mediaName, "."+ext) {
			continue // this daemon's own stream
		}
		if s.applicationName == "" && s.mediaName == "" {
			continue
		}
		return true
	}
	return false
}

func listPulseAudioStreams(ctx context.Context) ([]stream, error) {
	ctx, cancel := context.WithTimeout(ctx, externalAudioQueryTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, err
	}
	return parsePactlSinkInputs(string(out)), nil
}

// parsePactlSinkInputs extracts application.name and media.name properties
// from `pactl list sink-inputs` text output, one stream per "Sink Input
// #N" block.
func parsePactlSinkInputs(out string) []stream {
	var streams []stream
	var cur *stream

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Sink Input #"):
			if cur != nil {
				streams = append(streams, *cur)
			}
			cur = &stream{}
		case cur != nil && strings.HasPrefix(trimmed, "application.name = "):
			cur.applicationName = unquote(strings.TrimPrefix(trimmed, "application.name = "))
		case cur != nil && strings.HasPrefix(trimmed, "media.name = "):
			cur.mediaName = unquote(strings.TrimPrefix(trimmed, "media.name = "))
		}
	}
	if cur != nil {
		streams = append(streams, *cur)
	}
	return streams
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"`)
}
