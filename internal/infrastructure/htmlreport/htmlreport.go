// Package htmlreport renders the dashboard as a standalone HTML page.
package htmlreport

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

const templatePath = "templates/dashboard.html"

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").Funcs(template.FuncMap{
		"lineIcon": lineIcon,
	}).ParseFS(templateFS, templatePath),
)

// PageData is the template input.
type PageData struct {
	Dashboard   dashboard.Dashboard
	Screenshot  template.URL
	GeneratedAt string
}

// Render writes the dashboard page to w.
func Render(w io.Writer, d dashboard.Dashboard, generatedAt time.Time) error {
	data := PageData{
		Dashboard:   d,
		Screenshot:  screenshotURL(d.Sandbox.Image),
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
	}
	// A rejected image source still needs a visible sandbox line.
	if data.Screenshot == "" && len(d.Sandbox.Lines) == 0 {
		data.Dashboard.Sandbox.Lines = []dashboard.Line{{Kind: dashboard.LineInfo, Text: dashboard.MsgScreenshotUnavailable}}
	}
	if err := dashboardTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute %s template: %w", dashboardTemplate.Name(), err)
	}
	return nil
}

// WriteFile renders the dashboard into path.
func WriteFile(path string, d dashboard.Dashboard, generatedAt time.Time) error {
	var buf strings.Builder
	if err := Render(&buf, d, generatedAt); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(buf.String()), constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}

// screenshotURL only lets image data URIs and http(s) references through.
// Anything else is dropped so the template falls back to the text line.
func screenshotURL(src string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return template.URL(src)
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return template.URL(src)
	}
	return ""
}

func lineIcon(kind dashboard.LineKind) string {
	switch kind {
	case dashboard.LineSafe:
		return "✅"
	case dashboard.LineDanger:
		return "❌"
	case dashboard.LineWarning:
		return "⚠️"
	default:
		return "•"
	}
}
