package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis engine is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		view := newTerminalView(cmd.OutOrStdout(), false)
		services, err := newServices(getAppContext(cmd), view, false)
		if err != nil {
			return err
		}
		return runHealth(cmd.Context(), cmd.OutOrStdout(), services.Client)
	},
}

func runHealth(ctx context.Context, out io.Writer, client *api.Client) error {
	fmt.Fprintf(out, "Engine: %s\n", client.BaseURL())

	health, err := client.Health(ctx)
	if err != nil {
		fmt.Fprintf(out, "  health  %s\n", colorError("unreachable"))
		return fmt.Errorf("health check: %w", err)
	}
	fmt.Fprintf(out, "  health  %s\n", colorSuccess("ok"))
	printPayload(out, health)

	root, err := client.Root(ctx)
	if err != nil {
		fmt.Fprintf(out, "  root    %s (%v)\n", colorWarn("unavailable"), err)
		return nil
	}
	fmt.Fprintf(out, "  root    %s\n", colorSuccess("ok"))
	printPayload(out, root)
	return nil
}

func printPayload(out io.Writer, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "    %s: %v\n", k, payload[k])
	}
}
