package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/khanhnv2901/talos-cli/internal/application"
	scanapp "github.com/khanhnv2901/talos-cli/internal/application/scan"
)

var cfgFile string
var logger *zap.SugaredLogger

// AppContext is what every subcommand needs after the root pre-run.
type AppContext struct {
	Logger *zap.SugaredLogger
	Config *CLIConfig
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:   "talos",
	Short: "Scan websites for threats with the Talos analysis engine",
	Long: `Talos submits a URL to the Talos analysis engine and presents the result:
a 0-100 threat score, the engine's verdict, heuristic risk indicators,
SSL, infrastructure and sandbox details. Reports can be exported as PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		applyConfigDefaults(cmd)
		if err := cliConfig.validate(); err != nil {
			return err
		}

		l, err := buildLogger(cliConfig.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.Sugar()

		storeAppContext(cmd, &AppContext{Logger: logger, Config: cliConfig})

		logger.Debugw("configuration loaded",
			"api_url", cliConfig.API.BaseURL,
			"timeout_secs", cliConfig.API.TimeoutSecs,
			"output_dir", cliConfig.OutputDir,
			"telemetry", cliConfig.TelemetryEnabled)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. Interrupts cancel in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.talos.yaml)")
	flags.StringVar(&cliConfig.API.BaseURL, "api-url", cliConfig.API.BaseURL, "analysis engine base URL")
	flags.IntVar(&cliConfig.API.TimeoutSecs, "timeout", cliConfig.API.TimeoutSecs, "per-request timeout in seconds")
	flags.StringVar(&cliConfig.OutputDir, "output-dir", cliConfig.OutputDir, "directory for exported reports")
	flags.StringVar(&cliConfig.LogLevel, "log-level", cliConfig.LogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&cliConfig.TelemetryEnabled, "telemetry", cliConfig.TelemetryEnabled, "record local scan statistics")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if cmd != nil && cmd.Context() != nil {
		if appCtx, ok := cmd.Context().Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	return globalAppContext
}

func (a *AppContext) zapLogger() *zap.Logger {
	if a == nil || a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger.Desugar()
}

func (a *AppContext) config() *CLIConfig {
	if a == nil || a.Config == nil {
		return cliConfig
	}
	return a.Config
}

// newServices wires the application container around view.
func newServices(appCtx *AppContext, view scanapp.View, offline bool) (*application.Container, error) {
	cfg := appCtx.config()
	return application.NewContainer(application.Config{
		API:       cfg.clientConfig(),
		OutputDir: cfg.OutputDir,
		DataDir:   cfg.DataDir,
		Telemetry: cfg.TelemetryEnabled,
		Offline:   offline,
	}, view, appCtx.zapLogger())
}

// interactiveOutput reports whether the scanning animation should run.
func interactiveOutput() bool {
	return !color.NoColor
}
