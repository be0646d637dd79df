package dispatch

import (
	"testing"

	"github.com/pai-voice/paivoiced/internal/config"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

func TestSelectCloudWinsRegardlessOfPreference(t *testing.T) {
	cfg := config.Config{PreferredEngine: "piper"}
	probed := probe.Result{CloudAvailable: true, NeuralCPUAvailable: true}

	if got := Select(cfg, probed); got != voiceconf.EngineCloud {
		t.Errorf("expected cloud to win, got %v", got)
	}
}

func TestSelectExplicitPreferenceHonouredWhenAvailable(t *testing.T) {
	cfg := config.Config{PreferredEngine: "qwen3"}
	probed := probe.Result{NeuralGPUAvailable: true, OSTTSAvailable: true}

	if got := Select(cfg, probed); got != voiceconf.EngineNeuralGPU {
		t.Errorf("expected explicit neural-gpu preference honoured, got %v", got)
	}
}

func TestSelectFallsBackToAutoDetectWhenPreferredUnavailable(t *testing.T) {
	cfg := config.Config{PreferredEngine: "piper"}
	probed := probe.Result{NeuralCPUAvailable: false, NeuralGPUAvailable: true}

	if got := Select(cfg, probed); got != voiceconf.EngineNeuralGPU {
		t.Errorf("expected auto-detect fallback to neural-gpu, got %v", got)
	}
}

func TestSelectAutoDetectOrder(t *testing.T) {
	probed := probe.Result{NeuralCPUAvailable: true, NeuralGPUAvailable: true, OSTTSAvailable: true}
	if got := Select(config.Config{}, probed); got != voiceconf.EngineNeuralCPU {
		t.Errorf("expected neural-cpu to win auto-detect, got %v", got)
	}
}

func TestSelectNoneAvailable(t *testing.T) {
	if got := Select(config.Config{}, probe.Result{}); got != voiceconf.EngineNone {
		t.Errorf("expected EngineNone when nothing is available, got %v", got)
	}
}

func TestFallbackChainOrderAndMembership(t *testing.T) {
	probed := probe.Result{NeuralCPUAvailable: true, OSTTSAvailable: true}
	chain := FallbackChain(probed)

	if len(chain) != 2 {
		t.Fatalf("expected 2 entries in fallback chain, got %d: %v", len(chain), chain)
	}
	if chain[0] != voiceconf.EngineNeuralCPU || chain[1] != voiceconf.EngineOSTTS {
		t.Errorf("unexpected fallback chain order: %v", chain)
	}
}
