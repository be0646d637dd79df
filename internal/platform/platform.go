// Package platform detects the host OS and audio subsystem once at
// start-up. Adapted from the teacher's TUI-oriented platform detection to
// the daemon's narrower need: which audio subsystem to query for active
// streams and which player candidates are plausible.
package platform

import (
	"os"
	"os/exec"
	"runtime"
)

// AudioSubsystem names the detected host audio stack.
type AudioSubsystem string

const (
	SubsystemPulseAudio AudioSubsystem = "pulseaudio"
	SubsystemALSA       AudioSubsystem = "alsa"
	SubsystemCoreAudio  AudioSubsystem = "coreaudio"
	SubsystemWASAPI     AudioSubsystem = "wasapi"
	SubsystemNone       AudioSubsystem = "none"
)

// Info is the daemon's snapshot of the host platform, computed once and
// cached for the process lifetime.
type Info struct {
	OS             string
	AudioSubsystem AudioSubsystem
	HasAudioDevice bool
	IsCI           bool
}

// Detect probes the host once. Cache the result; do not call on every
// request.
func Detect() Info {
	info := Info{OS: runtime.GOOS, IsCI: isCI()}

	switch runtime.GOOS {
	case "darwin":
		info.AudioSubsystem = SubsystemCoreAudio
		info.HasAudioDevice = true
	case "windows":
		info.AudioSubsystem = SubsystemWASAPI
		info.HasAudioDevice = true
	case "linux":
		info.AudioSubsystem, info.HasAudioDevice = detectLinuxAudio()
	default:
		info.AudioSubsystem = SubsystemNone
	}

	return info
}

func isCI() bool {
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "BUILDKITE"} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

func detectLinuxAudio() (AudioSubsystem, bool) {
	if _, err := exec.LookPath("pactl"); err == nil {
		cmd := exec.Command("pactl", "info")
		if err := cmd.Run(); err == nil {
			return SubsystemPulseAudio, true
		}
	}

	if entries, err := os.ReadDir("/proc/asound"); err == nil && len(entries) > 0 {
		return SubsystemALSA, true
	}

	if _, err := exec.LookPath("aplay"); err == nil {
		return SubsystemALSA, true
	}

	return SubsystemNone, false
}
