package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

type exportOptions struct {
	File    string
	Offline bool
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved report as PDF",
	Long: `Export a report previously saved with "talos scan --json". The report is
sent to the engine unchanged; --offline renders the PDF locally instead.`,
	Example: `  talos export --file report.json
  talos export --file report.json --offline --output-dir reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := loadReportFile(exportOpts.File)
		if err != nil {
			return err
		}

		view := newTerminalView(cmd.OutOrStdout(), false)
		services, err := newServices(getAppContext(cmd), view, exportOpts.Offline)
		if err != nil {
			return err
		}

		_, err = services.Exporter.Export(cmd.Context(), r)
		return alreadyReported(err)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOpts.File, "file", "f", "", "report JSON file to export (required)")
	exportCmd.Flags().BoolVar(&exportOpts.Offline, "offline", false, "render the PDF locally instead of asking the engine")
	_ = exportCmd.MarkFlagRequired("file")
}

func loadReportFile(path string) (*report.AnalysisReport, error) {
	if path == "" {
		return nil, &ReportFileError{Path: path, Err: errors.New("path is empty")}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReportFileError{Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxReportBytes+1))
	if err != nil {
		return nil, &ReportFileError{Path: path, Err: err}
	}
	if int64(len(data)) > constants.MaxReportBytes {
		return nil, &ReportFileError{Path: path, Err: fmt.Errorf("larger than %d bytes", constants.MaxReportBytes)}
	}

	r, err := report.Decode(data)
	if err != nil {
		return nil, &ReportFileError{Path: path, Err: err}
	}
	return r, nil
}
