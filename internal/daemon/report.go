package daemon

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Report renders a human-readable dependency and selection report for the
// "probe" CLI subcommand. Adapted from the teacher's SystemDependencies
// PrintReport styling: a bold title, green for found, red for missing,
// yellow for optional-but-absent.
func Report(d *Daemon) string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1)
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missing := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	optional := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	b.WriteString(title.Render("paivoiced dependency report"))
	b.WriteString("\n\n")

	writeLine := func(name string, found bool, detail string, isOptional bool) {
		switch {
		case found:
			b.WriteString(ok.Render(fmt.Sprintf("  ✓ %s: ", name)))
			b.WriteString(detail + "\n")
		case isOptional:
			b.WriteString(optional.Render(fmt.Sprintf("  ○ %s: ", name)))
			b.WriteString("not available (optional)\n")
		default:
			b.WriteString(missing.Render(fmt.Sprintf("  ✗ %s: ", name)))
			b.WriteString("not available\n")
		}
	}

	b.WriteString("Back-ends:\n")
	writeLine("cloud", d.Probe.CloudAvailable, "credential configured", true)
	writeLine("neural-cpu", d.Probe.NeuralCPUAvailable, fmt.Sprintf("%s + %s", d.Probe.NeuralCPUBinary, d.Probe.NeuralCPUModel), true)
	writeLine("neural-gpu", d.Probe.NeuralGPUAvailable, fmt.Sprintf("sidecar on port %d", d.Config.Qwen3Port), true)
	writeLine("os-tts", d.Probe.OSTTSAvailable, d.Probe.OSTTSBinary, true)

	b.WriteString("\nAudio players:\n")
	writeLine("uncompressed", d.Probe.UncompressedPlayer.Found, d.Probe.UncompressedPlayer.Name, false)
	writeLine("compressed", d.Probe.CompressedPlayer.Found, d.Probe.CompressedPlayer.Name, false)

	b.WriteString("\nPlatform: " + d.Platform.OS + " / " + string(d.Platform.AudioSubsystem) + "\n")
	b.WriteString("Selected engine: " + d.Dispatcher.Selected.String() + "\n")

	return b.String()
}
