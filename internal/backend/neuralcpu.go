package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// NeuralCPU spawns the local neural synthesiser binary, writes text to its
// stdin, waits for exit, then reads and deletes the output file it wrote.
// Prosody fields do not apply to this back-end.
type NeuralCPU struct {
	BinaryPath string
	ModelPath  string
}

func NewNeuralCPU(binaryPath, modelPath string) *NeuralCPU {
	return &NeuralCPU{BinaryPath: binaryPath, ModelPath: modelPath}
}

func (n *NeuralCPU) Synthesize(ctx context.Context, text string, _ voiceconf.Prosody) ([]byte, voiceconf.Format, error) {
	outFile, err := os.CreateTemp("", "paivoiced-cpu-*.wav")
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("create neural-cpu output file: %w", err)
	}
	outPath := outFile.Name()
	_ = outFile.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, n.BinaryPath, "-m", n.ModelPath, "-f", outPath, "-q")

	// Stdin must be set before Start to avoid a race between the process
	// reading stdin and us writing to it.
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return nil, voiceconf.FormatNone, &daemonerr.EngineExit{
			Engine: "neural-cpu",
			Code:   code,
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, voiceconf.FormatNone, fmt.Errorf("read neural-cpu output: %w", err)
	}

	return audio, voiceconf.FormatUncompressed, nil
}
