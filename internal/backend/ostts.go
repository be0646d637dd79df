package backend

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

// OSTTS speaks text directly via the platform's speech tool. There is no
// intermediate buffer: Synthesize returns FormatNone and empty bytes;
// callers should prefer Speak.
type OSTTS struct {
	Binary    string
	UsesStdin bool
}

func NewOSTTS(binary string, usesStdin bool) *OSTTS {
	return &OSTTS{Binary: binary, UsesStdin: usesStdin}
}

func (o *OSTTS) Synthesize(ctx context.Context, text string, _ voiceconf.Prosody) ([]byte, voiceconf.Format, error) {
	return nil, voiceconf.FormatNone, o.Speak(ctx, text)
}

func (o *OSTTS) Speak(ctx context.Context, text string) error {
	var cmd *exec.Cmd
	if o.UsesStdin {
		cmd = exec.CommandContext(ctx, o.Binary)
		cmd.Stdin = strings.NewReader(text)
	} else {
		cmd = exec.CommandContext(ctx, o.Binary, text)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &daemonerr.EngineExit{Engine: "os-tts", Code: code, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}
