package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

const (
	defaultTimeoutSeconds = int(constants.DefaultRequestTimeout / time.Second)
	defaultLogLevel       = "warn"
	defaultOutputDir      = "."
	envPrefix             = "TALOS"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	API              APIConfig
	OutputDir        string
	DataDir          string
	LogLevel         string
	TelemetryEnabled bool
}

// APIConfig groups the analysis engine connection settings.
type APIConfig struct {
	BaseURL     string
	TimeoutSecs int
	RateLimit   int
	RateBurst   int
}

type configOverrides struct {
	BaseURL     *string
	TimeoutSecs *int
	RateLimit   *int
	RateBurst   *int
	OutputDir   *string
	DataDir     *string
	LogLevel    *string
	Telemetry   *bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		API: APIConfig{
			BaseURL:     constants.DefaultAPIBaseURL,
			TimeoutSecs: defaultTimeoutSeconds,
			RateLimit:   0,
			RateBurst:   1,
		},
		OutputDir:        defaultOutputDir,
		DataDir:          defaultDataDir(),
		LogLevel:         defaultLogLevel,
		TelemetryEnabled: false,
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".talos")
	}
	return ".talos"
}

// initConfig points viper at the config file and the TALOS_ environment.
// A missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".talos")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func loadConfigOverrides() configOverrides {
	overrides := configOverrides{}

	if viper.IsSet("api.base_url") {
		val := viper.GetString("api.base_url")
		overrides.BaseURL = &val
	}
	if viper.IsSet("api.timeout_secs") {
		val := viper.GetInt("api.timeout_secs")
		overrides.TimeoutSecs = &val
	}
	if viper.IsSet("api.rate_limit") {
		val := viper.GetInt("api.rate_limit")
		overrides.RateLimit = &val
	}
	if viper.IsSet("api.rate_burst") {
		val := viper.GetInt("api.rate_burst")
		overrides.RateBurst = &val
	}
	if viper.IsSet("output_dir") {
		val := viper.GetString("output_dir")
		overrides.OutputDir = &val
	}
	if viper.IsSet("data_dir") {
		val := viper.GetString("data_dir")
		overrides.DataDir = &val
	}
	if viper.IsSet("log_level") {
		val := viper.GetString("log_level")
		overrides.LogLevel = &val
	}
	if viper.IsSet("telemetry") {
		val := viper.GetBool("telemetry")
		overrides.Telemetry = &val
	}

	return overrides
}

// applyConfigDefaults merges config file and environment values into the
// runtime config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadConfigOverrides()
	flags := cmd.Flags()

	if overrides.BaseURL != nil {
		applyStringDefault(flags, "api-url", *overrides.BaseURL, func(v string) {
			cliConfig.API.BaseURL = v
		})
	}
	if overrides.TimeoutSecs != nil {
		applyIntDefault(flags, "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.API.TimeoutSecs = v
		})
	}
	if overrides.OutputDir != nil {
		applyStringDefault(flags, "output-dir", *overrides.OutputDir, func(v string) {
			cliConfig.OutputDir = v
		})
	}
	if overrides.LogLevel != nil {
		applyStringDefault(flags, "log-level", *overrides.LogLevel, func(v string) {
			cliConfig.LogLevel = v
		})
	}
	if overrides.Telemetry != nil {
		applyBoolDefault(flags, "telemetry", *overrides.Telemetry, func(v bool) {
			cliConfig.TelemetryEnabled = v
		})
	}

	// No flags for these.
	if overrides.RateLimit != nil {
		cliConfig.API.RateLimit = *overrides.RateLimit
	}
	if overrides.RateBurst != nil {
		cliConfig.API.RateBurst = *overrides.RateBurst
	}
	if overrides.DataDir != nil && *overrides.DataDir != "" {
		cliConfig.DataDir = *overrides.DataDir
	}
}

// validate rejects settings that would only fail later, deep inside a scan.
func (c *CLIConfig) validate() error {
	if c.API.TimeoutSecs <= 0 {
		return &InvalidSettingError{Name: "timeout", Value: c.API.TimeoutSecs, Reason: "must be a positive number of seconds"}
	}
	if c.API.RateLimit < 0 {
		return &InvalidSettingError{Name: "api.rate_limit", Value: c.API.RateLimit, Reason: "must not be negative"}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &InvalidSettingError{Name: "log-level", Value: c.LogLevel, Reason: "must be one of debug, info, warn, error"}
	}
	return nil
}

func (c *CLIConfig) clientConfig() api.Config {
	return api.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   time.Duration(c.API.TimeoutSecs) * time.Second,
		RateLimit: c.API.RateLimit,
		RateBurst: c.API.RateBurst,
		UserAgent: "talos-cli/" + Version,
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
