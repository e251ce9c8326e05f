package cmd

import (
	"github.com/fatih/color"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
	colorBold    = color.New(color.Bold).SprintFunc()
	colorDanger  = color.New(color.FgRed, color.Bold).SprintFunc()
	colorSafe    = color.New(color.FgGreen, color.Bold).SprintFunc()
)

func colorForKind(kind dashboard.LineKind) func(a ...interface{}) string {
	switch kind {
	case dashboard.LineSafe:
		return colorSuccess
	case dashboard.LineDanger:
		return colorError
	case dashboard.LineWarning:
		return colorWarn
	default:
		return colorInfo
	}
}

func colorForClass(class dashboard.Classification) func(a ...interface{}) string {
	if class == dashboard.Danger {
		return colorDanger
	}
	return colorSafe
}

func kindIcon(kind dashboard.LineKind) string {
	switch kind {
	case dashboard.LineSafe:
		return "✔"
	case dashboard.LineDanger:
		return "✘"
	case dashboard.LineWarning:
		return "!"
	default:
		return "•"
	}
}
