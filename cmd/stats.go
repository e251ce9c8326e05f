package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/talos-cli/internal/infrastructure/telemetry"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize locally recorded scans (requires --telemetry)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getAppContext(cmd).config()
		path := telemetry.LogPath(cfg.DataDir)
		s, err := telemetry.SummarizeFile(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if s.Total == 0 {
			fmt.Fprintf(out, "No scans recorded in %s\n", path)
			if !cfg.TelemetryEnabled {
				fmt.Fprintln(out, colorWarn("Telemetry is disabled; enable it with --telemetry or `telemetry: true` in the config file."))
			}
			return nil
		}

		fmt.Fprintf(out, "Scans        : %d\n", s.Total)
		fmt.Fprintf(out, "Succeeded    : %s\n", colorSuccess(s.Succeeded))
		fmt.Fprintf(out, "Failed       : %s\n", colorError(s.Failed))
		fmt.Fprintf(out, "Threats      : %s\n", colorDanger(s.Threats))
		fmt.Fprintf(out, "Success rate : %.1f%%\n", s.SuccessRate)
		fmt.Fprintf(out, "Avg duration : %s\n", formatElapsed(s.AvgDuration))
		return nil
	},
}
