// Package probe answers "is this back-end/player usable right now" once,
// at start-up, and caches the result for the daemon's lifetime. Adapted
// from the teacher's DependencyChecker interface and platform-detection
// shape.
package probe

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pai-voice/paivoiced/internal/config"
	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/platform"
)

var log = dlog.For("probe")

const gpuProbeTimeout = 2 * time.Second

// Result is the outcome of probing every back-end once.
type Result struct {
	CloudAvailable     bool
	NeuralCPUAvailable bool
	NeuralCPUBinary    string
	NeuralCPUModel     string
	NeuralGPUAvailable bool
	OSTTSAvailable     bool
	OSTTSBinary        string
	OSTTSUsesStdin     bool
	Platform           platform.Info

	UncompressedPlayer PlayerCandidate
	CompressedPlayer   PlayerCandidate
}

// PlayerCandidate describes one discovered audio player binary.
type PlayerCandidate struct {
	Name       string
	ArgvPrefix []string
	// VolumeArgs maps a normalised volume in [0,1] to extra argv appended
	// after ArgvPrefix, before the file path. Nil means the candidate
	// doesn't expose a volume flag.
	VolumeArgs func(volume float64) []string
	Found      bool
}

// uncompressedCandidates is the fixed-priority order for uncompressed
// (WAV/PCM) playback: system-audio-daemon client, generic media player,
// ALSA-style raw player, then the macOS built-in player.
var uncompressedCandidates = []PlayerCandidate{
	{Name: "paplay", ArgvPrefix: []string{"paplay"}, VolumeArgs: paplayVolume},
	{Name: "mpv", ArgvPrefix: []string{"mpv", "--no-terminal"}, VolumeArgs: mpvVolume},
	{Name: "aplay", ArgvPrefix: []string{"aplay"}},
	{Name: "afplay", ArgvPrefix: []string{"afplay"}, VolumeArgs: afplayVolume},
}

// compressedCandidates is the fixed-priority order for compressed (MP3)
// playback: generic media player, dedicated decoder, the macOS built-in
// player, system-audio-daemon client.
var compressedCandidates = []PlayerCandidate{
	{Name: "mpv", ArgvPrefix: []string{"mpv", "--no-terminal"}, VolumeArgs: mpvVolume},
	{Name: "mpg123", ArgvPrefix: []string{"mpg123", "-q"}, VolumeArgs: mpg123Volume},
	{Name: "afplay", ArgvPrefix: []string{"afplay"}, VolumeArgs: afplayVolume},
	{Name: "paplay", ArgvPrefix: []string{"paplay"}, VolumeArgs: paplayVolume},
}

// osTTSCandidates is the fixed-priority order of platform speech tools.
// usesStdin indicates the text is piped in rather than passed on argv.
var osTTSCandidates = []struct {
	name      string
	usesStdin bool
}{
	{"say", false},
	{"espeak-ng", false},
	{"espeak", false},
	{"festival", true},
}

func paplayVolume(v float64) []string {
	// paplay takes 0-65536 for full scale.
	return []string{"--volume", strconv.Itoa(clampInt(v * 65536))}
}

func mpvVolume(v float64) []string {
	return []string{"--volume=" + strconv.Itoa(clampInt(v*100))}
}

func mpg123Volume(v float64) []string {
	return []string{"-g", strconv.Itoa(clampInt(v * 100))}
}

func afplayVolume(v float64) []string {
	return []string{"-v", strconv.FormatFloat(v*2, 'f', 2, 64)}
}

func clampInt(f float64) int {
	n := int(f)
	if n < 0 {
		return 0
	}
	return n
}

// ProbePlayers returns the first present candidate for each audio format.
func ProbePlayers() (uncompressed, compressed PlayerCandidate) {
	uncompressed = firstPresent(uncompressedCandidates)
	compressed = firstPresent(compressedCandidates)
	return
}

func firstPresent(candidates []PlayerCandidate) PlayerCandidate {
	for _, c := range candidates {
		if _, err := exec.LookPath(c.ArgvPrefix[0]); err == nil {
			c.Found = true
			return c
		}
	}
	return PlayerCandidate{}
}

// ProbeCloud checks only whether a usable credential is configured. Never
// issues a network call.
func ProbeCloud(cfg config.Config) bool {
	return cfg.CloudConfigured()
}

// ProbeNeuralCPU checks that the CPU neural binary is on PATH and the
// configured model file exists. Never runs the binary.
func ProbeNeuralCPU(cfg config.Config) (ok bool, binaryPath, modelPath string) {
	binaryPath, err := exec.LookPath("piper")
	if err != nil {
		for _, p := range []string{"/usr/local/bin/piper", "/usr/bin/piper", "/opt/piper/piper"} {
			if _, statErr := os.Stat(p); statErr == nil {
				binaryPath = p
				err = nil
				break
			}
		}
	}
	if err != nil {
		return false, "", ""
	}

	modelPath = resolveModelPath(cfg)
	if modelPath == "" {
		return false, binaryPath, ""
	}
	if _, err := os.Stat(modelPath); err != nil {
		return false, binaryPath, modelPath
	}
	return true, binaryPath, modelPath
}

func resolveModelPath(cfg config.Config) string {
	if cfg.PiperModel == "" {
		return ""
	}
	if filepath.IsAbs(cfg.PiperModel) {
		return cfg.PiperModel
	}
	dir := cfg.PiperModelDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "share", "piper-voices")
	}
	return filepath.Join(dir, cfg.PiperModel)
}

// ProbeNeuralGPU issues an HTTP GET to the sidecar's /health with a
// 2-second timeout.
func ProbeNeuralGPU(ctx context.Context, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, gpuProbeTimeout)
	defer cancel()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ProbeOSTTS checks each candidate's presence on PATH in priority order,
// returning the first hit.
func ProbeOSTTS() (ok bool, binary string, usesStdin bool) {
	for _, c := range osTTSCandidates {
		if _, err := exec.LookPath(c.name); err == nil {
			return true, c.name, c.usesStdin
		}
	}
	return false, "", false
}

// RunAll probes every back-end and player once and returns the combined
// result, logging each outcome.
func RunAll(ctx context.Context, cfg config.Config) Result {
	r := Result{Platform: platform.Detect()}

	r.CloudAvailable = ProbeCloud(cfg)
	log.Info("probed cloud", "available", r.CloudAvailable)
	if !r.CloudAvailable {
		log.Warn("back-end unavailable", "err", &daemonerr.ConfigMissing{Key: "ELEVENLABS_API_KEY"})
	}

	r.NeuralCPUAvailable, r.NeuralCPUBinary, r.NeuralCPUModel = ProbeNeuralCPU(cfg)
	log.Info("probed neural-cpu", "available", r.NeuralCPUAvailable, "binary", r.NeuralCPUBinary, "model", r.NeuralCPUModel)
	if !r.NeuralCPUAvailable && r.NeuralCPUBinary != "" && r.NeuralCPUModel == "" {
		log.Warn("back-end unavailable", "err", &daemonerr.ConfigMissing{Key: "PIPER_MODEL"})
	}

	r.NeuralGPUAvailable = ProbeNeuralGPU(ctx, cfg.Qwen3Port)
	log.Info("probed neural-gpu", "available", r.NeuralGPUAvailable, "port", cfg.Qwen3Port)

	r.OSTTSAvailable, r.OSTTSBinary, r.OSTTSUsesStdin = ProbeOSTTS()
	log.Info("probed os-tts", "available", r.OSTTSAvailable, "binary", r.OSTTSBinary)

	r.UncompressedPlayer, r.CompressedPlayer = ProbePlayers()
	log.Info("probed players", "uncompressed", r.UncompressedPlayer.Name, "compressed", r.CompressedPlayer.Name)

	return r
}
