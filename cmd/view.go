package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
)

// terminalView renders workflow events as plain terminal output. Output is
// append-only, so the Hide* calls only stop what is still animating.
type terminalView struct {
	out       io.Writer
	animate   bool
	indicator *scanIndicator
}

func newTerminalView(out io.Writer, animate bool) *terminalView {
	return &terminalView{out: out, animate: animate}
}

func (v *terminalView) ShowScanning(url string) {
	if !v.animate {
		fmt.Fprintf(v.out, "%s %s ...\n", colorInfo("Scanning"), url)
		return
	}
	v.indicator = newScanIndicator(v.out, url, 0)
	v.indicator.Start()
}

func (v *terminalView) HideScanning() {
	if v.indicator == nil {
		return
	}
	v.indicator.Stop()
	v.indicator = nil
}

func (v *terminalView) ShowSummary(s dashboard.Summary) {
	paint := colorForClass(s.Classification)
	fmt.Fprintf(v.out, "%s  %s\n", paint(s.Headline), paint(s.ScoreLabel))
	if s.Verdict != "" {
		fmt.Fprintf(v.out, "Verdict: %s\n", s.Verdict)
	}
}

func (v *terminalView) HideSummary() {}

func (v *terminalView) ShowDashboard(d dashboard.Dashboard) {
	renderDashboard(v.out, d)
}

func (v *terminalView) HideDashboard() {}

func (v *terminalView) Notify(p dashboard.Prompt) {
	fmt.Fprintln(v.out, colorForKind(p.Level)(p.Message))
}

func renderDashboard(out io.Writer, d dashboard.Dashboard) {
	title := "Talos Security Report"
	if d.URL != "" {
		title += ": " + d.URL
	}
	fmt.Fprintln(out, colorBold("=== "+title+" ==="))
	fmt.Fprintf(out, "Score   : %s\n", colorForClass(d.Score.Classification)(d.Score.Label))
	fmt.Fprintf(out, "Verdict : %s\n", colorForClass(d.Verdict.Classification)(d.Verdict.Text))

	renderSection(out, "Heuristics", d.Reasons)
	renderSection(out, "SSL", d.SSL)
	renderSection(out, "Infrastructure", d.Infra)

	fmt.Fprintln(out, colorBold("-- Sandbox --"))
	if d.Sandbox.Image != "" {
		fmt.Fprintf(out, "  %s %s\n", colorInfo(kindIcon(dashboard.LineInfo)), describeScreenshot(d.Sandbox.Image))
		return
	}
	for _, line := range d.Sandbox.Lines {
		fmt.Fprintf(out, "  %s %s\n", colorForKind(line.Kind)(kindIcon(line.Kind)), line.String())
	}
}

func renderSection(out io.Writer, name string, lines []dashboard.Line) {
	fmt.Fprintln(out, colorBold("-- "+name+" --"))
	for _, line := range lines {
		fmt.Fprintf(out, "  %s %s\n", colorForKind(line.Kind)(kindIcon(line.Kind)), line.String())
	}
}

// describeScreenshot keeps inline images from flooding the terminal.
func describeScreenshot(src string) string {
	if strings.HasPrefix(src, "data:") {
		return fmt.Sprintf("Screenshot captured (%d bytes inline, use --html to view)", len(src))
	}
	return "Screenshot: " + src
}

// askYesNo reads one answer from in. An empty answer returns def.
func askYesNo(in lineReader, out io.Writer, question string, def bool) bool {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	fmt.Fprintf(out, "%s %s: ", question, hint)
	answer, err := in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		if err != nil {
			// No input available.
			fmt.Fprintln(out)
			return false
		}
		return def
	}
	return answer == "y" || answer == "yes"
}

type lineReader interface {
	ReadString(delim byte) (string, error)
}

func formatElapsed(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
