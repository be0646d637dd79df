// Package player spawns the external audio player for a synthesised
// buffer and guarantees its temp file is cleaned up on every exit path.
// Adapted from the teacher's SubprocessManager guaranteed-cleanup pattern,
// applied to an external process instead of an in-process decoder.
package player

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// TempFilePrefix must be preserved: external-audio detection matches on
// this prefix.
const TempFilePrefix = "voice-"

// Play writes audio to a uniquely named temp file under os.TempDir, spawns
// the given candidate against it, and waits for exit. The temp file is
// removed on every exit path — success, non-zero exit, or spawn error.
func Play(ctx context.Context, candidate probe.PlayerCandidate, audio []byte, format voiceconf.Format, volume float64) error {
	if !candidate.Found {
		return fmt.Errorf("no player candidate available for format %s", format)
	}

	f, err := os.CreateTemp(os.TempDir(), TempFilePrefix+"*."+format.Extension())
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp audio file: %w", err)
	}

	argv := append([]string{}, candidate.ArgvPrefix...)
	if candidate.VolumeArgs != nil {
		argv = append(argv, candidate.VolumeArgs(volume)...)
	}
	argv = append(argv, path)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &daemonerr.PlaybackFailed{Player: candidate.Name, Code: code}
	}

	return nil
}
