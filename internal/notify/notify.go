// Package notify sends a best-effort desktop notification alongside (or
// instead of) the spoken audio. It is bounded by a short timeout and never
// surfaces its own failures to the caller: if every TTS engine fails, the
// user should still see something even though they heard nothing.
package notify

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"github.com/pai-voice/paivoiced/internal/dlog"
)

var log = dlog.For("notify")

const sendTimeout = 3 * time.Second

// Send fires a desktop notification with title and message. It runs
// synchronously but briefly (bounded by sendTimeout) and swallows any
// failure; the caller waits at most sendTimeout and never checks a result.
func Send(ctx context.Context, title, message string) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.CommandContext(ctx, "notify-send", title, message)
	case "darwin":
		script := `display notification "` + escapeAppleScript(message) + `" with title "` + escapeAppleScript(title) + `"`
		cmd = exec.CommandContext(ctx, "osascript", "-e", script)
	default:
		log.Debug("no notification mechanism for platform", "os", runtime.GOOS)
		return
	}

	if err := cmd.Run(); err != nil {
		log.Warn("desktop notification failed", "err", err)
	}
}

func escapeAppleScript(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
