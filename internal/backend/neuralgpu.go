package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

const (
	neuralGPUTimeout   = 60 * time.Second
	defaultSpeaker     = "Ryan"
	defaultInstruction = "stable professional delivery, numbers read naturally"
)

// NeuralGPU talks to the local neural synthesis sidecar over HTTP.
type NeuralGPU struct {
	Port   int
	Client *http.Client
}

func NewNeuralGPU(port int) *NeuralGPU {
	return &NeuralGPU{Port: port, Client: &http.Client{Timeout: neuralGPUTimeout}}
}

type gpuRequest struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker"`
	Instruct string `json:"instruct,omitempty"`
	Language string `json:"language"`
}

// SynthesizeWithStyle is the primary entry point: instruct and speaker
// fall back to the daemon defaults when empty.
func (g *NeuralGPU) SynthesizeWithStyle(ctx context.Context, text, speaker, instruct string) ([]byte, voiceconf.Format, error) {
	if speaker == "" {
		speaker = defaultSpeaker
	}
	if instruct == "" {
		instruct = defaultInstruction
	}

	body := gpuRequest{Text: text, Speaker: speaker, Instruct: instruct, Language: "en"}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("marshal neural-gpu request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, neuralGPUTimeout)
	defer cancel()

	url := fmt.Sprintf("http://127.0.0.1:%d/tts/generate", g.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("build neural-gpu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("neural-gpu request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, voiceconf.FormatNone, &daemonerr.UpstreamRejected{
			Engine: "neural-gpu",
			Status: resp.StatusCode,
			Body:   string(respBody),
		}
	}

	return respBody, voiceconf.FormatUncompressed, nil
}

func (g *NeuralGPU) Synthesize(ctx context.Context, text string, _ voiceconf.Prosody) ([]byte, voiceconf.Format, error) {
	return g.SynthesizeWithStyle(ctx, text, "", "")
}
