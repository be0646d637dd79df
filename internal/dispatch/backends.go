package dispatch

import (
	"github.com/pai-voice/paivoiced/internal/backend"
	"github.com/pai-voice/paivoiced/internal/config"
	"github.com/pai-voice/paivoiced/internal/probe"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// Backends holds one constructed instance per engine the probes found
// usable. Built once at start-up; read-only afterward.
type Backends struct {
	Cloud     *backend.Cloud
	NeuralCPU *backend.NeuralCPU
	NeuralGPU *backend.NeuralGPU
	OSTTS     *backend.OSTTS
}

// Build constructs a backend instance for every engine the probes marked
// available.
func Build(cfg config.Config, probed probe.Result) Backends {
	var b Backends
	if probed.CloudAvailable {
		b.Cloud = backend.NewCloud(cfg.ElevenLabsAPIKey)
	}
	if probed.NeuralCPUAvailable {
		b.NeuralCPU = backend.NewNeuralCPU(probed.NeuralCPUBinary, probed.NeuralCPUModel)
	}
	if probed.NeuralGPUAvailable {
		b.NeuralGPU = backend.NewNeuralGPU(cfg.Qwen3Port)
	}
	if probed.OSTTSAvailable {
		b.OSTTS = backend.NewOSTTS(probed.OSTTSBinary, probed.OSTTSUsesStdin)
	}
	return b
}

func (b Backends) For(engine voiceconf.Engine) (backend.Backend, bool) {
	switch engine {
	case voiceconf.EngineCloud:
		if b.Cloud != nil {
			return b.Cloud, true
		}
	case voiceconf.EngineNeuralCPU:
		if b.NeuralCPU != nil {
			return b.NeuralCPU, true
		}
	case voiceconf.EngineNeuralGPU:
		if b.NeuralGPU != nil {
			return b.NeuralGPU, true
		}
	case voiceconf.EngineOSTTS:
		if b.OSTTS != nil {
			return b.OSTTS, true
		}
	}
	return nil, false
}
