package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/htmlreport"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

type scanOptions struct {
	AssumeYes bool
	JSONPath  string
	HTMLPath  string
	Export    bool
	Offline   bool
}

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Analyze a URL and show the threat summary",
	Long: `Submit a URL to the analysis engine. After the summary you are asked
whether to open the full dashboard (--yes skips the question).`,
	Example: `  talos scan https://example.com
  talos scan example.com --yes --html dashboard.html --export`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		out := cmd.OutOrStdout()
		view := newTerminalView(out, interactiveOutput())

		services, err := newServices(appCtx, view, scanOpts.Offline)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := services.Workflow.Start(ctx, args[0]); err != nil {
			return alreadyReported(err)
		}
		current := services.Workflow.LastReport()

		if scanOpts.AssumeYes || askYesNo(bufio.NewReader(cmd.InOrStdin()), out, "Open full dashboard?", true) {
			if err := services.Workflow.Confirm(); err != nil {
				return err
			}
		}

		if scanOpts.JSONPath != "" {
			if err := writeReportJSON(scanOpts.JSONPath, current); err != nil {
				return err
			}
			fmt.Fprintln(out, colorSuccess("Report JSON saved to "+scanOpts.JSONPath))
		}
		if scanOpts.HTMLPath != "" {
			if err := writeDashboardHTML(scanOpts.HTMLPath, current); err != nil {
				return err
			}
			fmt.Fprintln(out, colorSuccess("Dashboard saved to "+scanOpts.HTMLPath))
		}
		if scanOpts.Export {
			if _, err := services.Exporter.Export(ctx, current); err != nil {
				return alreadyReported(err)
			}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVarP(&scanOpts.AssumeYes, "yes", "y", false, "open the full dashboard without asking")
	scanCmd.Flags().StringVar(&scanOpts.JSONPath, "json", "", "save the raw engine report to this file")
	scanCmd.Flags().StringVar(&scanOpts.HTMLPath, "html", "", "save the dashboard as an HTML page")
	scanCmd.Flags().BoolVar(&scanOpts.Export, "export", false, "export the PDF report after the scan")
	scanCmd.Flags().BoolVar(&scanOpts.Offline, "offline", false, "render the PDF locally instead of asking the engine")
}

// writeReportJSON stores the engine bytes, indented, so the file can later
// be fed to `talos export --file`.
func writeReportJSON(path string, r *report.AnalysisReport) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent report: %w", err)
	}
	buf.WriteByte('\n')

	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

func writeDashboardHTML(path string, r *report.AnalysisReport) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	return htmlreport.WriteFile(path, dashboard.Build(r), time.Now())
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
