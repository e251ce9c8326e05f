package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/talos-cli/internal/application"
	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

var tuiOffline bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal UI for scanning and exporting",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		view := newTerminalView(out, interactiveOutput())
		services, err := newServices(getAppContext(cmd), view, tuiOffline)
		if err != nil {
			return err
		}
		return runTUI(cmd.Context(), bufio.NewReader(cmd.InOrStdin()), out, services)
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiOffline, "offline", false, "render exported PDFs locally")
}

// runTUI loops over the menu until the user quits or input ends. Failures
// are already shown by the view, so they never end the session.
func runTUI(ctx context.Context, reader *bufio.Reader, out io.Writer, services *application.Container) error {
	for {
		printMenu(out, services)
		input, err := reader.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(input))
		if choice == "" && err != nil {
			fmt.Fprintln(out)
			return nil
		}

		switch choice {
		case "q", "quit":
			return nil
		case "s", "scan":
			tuiScan(ctx, reader, out, services)
		case "d", "dashboard":
			tuiDashboard(out, services)
		case "e", "export":
			_, _ = services.Exporter.Export(ctx, services.Workflow.LastReport())
		case "h", "health":
			if err := runHealth(ctx, out, services.Client); err != nil {
				fmt.Fprintln(out, colorError(err.Error()))
			}
		case "":
			continue
		default:
			fmt.Fprintln(out, "Invalid selection")
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func printMenu(out io.Writer, services *application.Container) {
	fmt.Fprintln(out, colorBold("=== Talos ==="))
	state := services.Workflow.State()
	if state.URL != "" {
		fmt.Fprintf(out, "Last: %s (%s)\n", state.URL, state.Phase)
	}
	fmt.Fprintln(out, "[s] Scan    [d] Dashboard    [e] Export    [h] Health    [q] Quit")
	fmt.Fprint(out, "Select: ")
}

// tuiDashboard opens a ready result, or re-renders the last report once the
// dashboard has already been shown.
func tuiDashboard(out io.Writer, services *application.Container) {
	if err := services.Workflow.Confirm(); err == nil {
		return
	}
	last := services.Workflow.LastReport()
	if last == nil {
		fmt.Fprintln(out, colorWarn("Nothing to show, run a scan first"))
		return
	}
	renderDashboard(out, dashboard.Build(last))
}

func tuiScan(ctx context.Context, reader *bufio.Reader, out io.Writer, services *application.Container) {
	fmt.Fprint(out, "URL: ")
	target, _ := reader.ReadString('\n')

	err := services.Workflow.Start(ctx, target)
	switch {
	case err == nil:
	case errors.Is(err, sharedErrors.ErrScanInProgress):
		fmt.Fprintln(out, colorWarn("A scan is already running"))
		return
	default:
		return
	}

	if askYesNo(reader, out, "Open full dashboard?", true) {
		_ = services.Workflow.Confirm()
		return
	}
	fmt.Fprintln(out, colorInfo("Choose [d] later to open the dashboard"))
}
