// Package dispatch selects the TTS engine once at start-up and, at
// runtime, picks a back-end per request, falls back on failure, and runs
// the progressive pipeline for the neural-GPU back-end.
package dispatch

import (
	"github.com/pai-voice/paivoiced/internal/config"
	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

var log = dlog.For("dispatch")

// Select runs the init-time selection rules exactly once. The result is
// cached by the caller and never revised mid-run.
func Select(cfg config.Config, probed probe.Result) voiceconf.Engine {
	if probed.CloudAvailable {
		log.Info("engine selected", "engine", "cloud", "reason", "credential configured")
		return voiceconf.EngineCloud
	}

	if cfg.PreferredEngine == "piper" {
		if probed.NeuralCPUAvailable {
			log.Info("engine selected", "engine", "neural-cpu", "reason", "explicitly requested")
			return voiceconf.EngineNeuralCPU
		}
		log.Warn("requested engine unavailable, continuing auto-detect", "engine", "neural-cpu")
	}

	if cfg.PreferredEngine == "qwen3" {
		if probed.NeuralGPUAvailable {
			log.Info("engine selected", "engine", "neural-gpu", "reason", "explicitly requested")
			return voiceconf.EngineNeuralGPU
		}
		log.Warn("requested engine unavailable, continuing auto-detect", "engine", "neural-gpu")
	}

	if probed.NeuralCPUAvailable {
		log.Info("engine selected", "engine", "neural-cpu", "reason", "auto-detect")
		return voiceconf.EngineNeuralCPU
	}
	if probed.NeuralGPUAvailable {
		log.Info("engine selected", "engine", "neural-gpu", "reason", "auto-detect")
		return voiceconf.EngineNeuralGPU
	}
	if probed.OSTTSAvailable {
		log.Info("engine selected", "engine", "os-tts", "reason", "auto-detect")
		return voiceconf.EngineOSTTS
	}

	log.Warn("no engine available")
	return voiceconf.EngineNone
}

// FallbackChain is the cached-selection order consulted on primary-path
// failure. It is never re-probed.
func FallbackChain(probed probe.Result) []voiceconf.Engine {
	var chain []voiceconf.Engine
	if probed.NeuralCPUAvailable {
		chain = append(chain, voiceconf.EngineNeuralCPU)
	}
	if probed.NeuralGPUAvailable {
		chain = append(chain, voiceconf.EngineNeuralGPU)
	}
	if probed.OSTTSAvailable {
		chain = append(chain, voiceconf.EngineOSTTS)
	}
	return chain
}
