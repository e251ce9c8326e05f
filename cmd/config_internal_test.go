package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

func TestApplyIntDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("timeout", 0, "")

	var applied int
	applyIntDefault(flags, "timeout", 15, func(v int) {
		applied = v
	})
	if applied != 15 {
		t.Fatalf("expected setter to receive 15, got %d", applied)
	}

	// When flag already set, setter should not run.
	if err := flags.Set("timeout", "7"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = 0
	applyIntDefault(flags, "timeout", 20, func(v int) {
		applied = v
	})
	if applied != 0 {
		t.Fatalf("setter should not run when flag overridden, got %d", applied)
	}
}

func TestApplyBoolDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("telemetry", false, "")

	applied := false
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatal("expected setter to run with true")
	}

	if err := flags.Set("telemetry", "false"); err != nil {
		t.Fatalf("failed to set bool flag: %v", err)
	}
	applied = true
	applyBoolDefault(flags, "telemetry", true, func(v bool) {
		applied = v
	})
	if !applied {
		t.Fatalf("setter should not change value when flag already set")
	}
}

func TestApplyStringDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api-url", "", "")

	var applied string
	applyStringDefault(flags, "api-url", "http://engine:8000", func(v string) {
		applied = v
	})
	if applied != "http://engine:8000" {
		t.Fatalf("expected setter to run, got %q", applied)
	}

	if err := flags.Set("api-url", "http://flag:9000"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	applied = ""
	applyStringDefault(flags, "api-url", "http://engine:8000", func(v string) {
		applied = v
	})
	if applied != "" {
		t.Fatalf("setter should not run when flag overridden, got %q", applied)
	}

	// A nil flag set is ignored.
	applyStringDefault(nil, "api-url", "x", func(v string) { applied = v })
	if applied != "" {
		t.Fatalf("nil flag set should be ignored, got %q", applied)
	}
}

func TestNewCLIConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := newCLIConfig()
	if cfg.API.BaseURL != constants.DefaultAPIBaseURL {
		t.Fatalf("unexpected base url default: %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Fatalf("unexpected timeout default: %d", cfg.API.TimeoutSecs)
	}
	if cfg.API.RateLimit != 0 || cfg.API.RateBurst != 1 {
		t.Fatalf("unexpected rate defaults: %d/%d", cfg.API.RateLimit, cfg.API.RateBurst)
	}
	if cfg.OutputDir != "." {
		t.Fatalf("unexpected output dir: %s", cfg.OutputDir)
	}
	if cfg.DataDir != filepath.Join(home, ".talos") {
		t.Fatalf("unexpected data dir: %s", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.TelemetryEnabled {
		t.Fatal("expected telemetry to be disabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("api.base_url", "http://engine:8000")
	viper.Set("api.timeout_secs", 30)
	viper.Set("api.rate_limit", 5)
	viper.Set("api.rate_burst", 2)
	viper.Set("output_dir", "reports")
	viper.Set("data_dir", "/var/lib/talos")
	viper.Set("log_level", "debug")
	viper.Set("telemetry", true)

	overrides := loadConfigOverrides()

	if overrides.BaseURL == nil || *overrides.BaseURL != "http://engine:8000" {
		t.Fatalf("expected base url override, got %+v", overrides.BaseURL)
	}
	if overrides.TimeoutSecs == nil || *overrides.TimeoutSecs != 30 {
		t.Fatalf("expected timeout override 30, got %+v", overrides.TimeoutSecs)
	}
	if overrides.RateLimit == nil || *overrides.RateLimit != 5 {
		t.Fatalf("expected rate limit override 5, got %+v", overrides.RateLimit)
	}
	if overrides.RateBurst == nil || *overrides.RateBurst != 2 {
		t.Fatalf("expected rate burst override 2, got %+v", overrides.RateBurst)
	}
	if overrides.OutputDir == nil || *overrides.OutputDir != "reports" {
		t.Fatalf("expected output dir override, got %+v", overrides.OutputDir)
	}
	if overrides.DataDir == nil || *overrides.DataDir != "/var/lib/talos" {
		t.Fatalf("expected data dir override, got %+v", overrides.DataDir)
	}
	if overrides.LogLevel == nil || *overrides.LogLevel != "debug" {
		t.Fatalf("expected log level override, got %+v", overrides.LogLevel)
	}
	if overrides.Telemetry == nil || !*overrides.Telemetry {
		t.Fatalf("expected telemetry override true, got %+v", overrides.Telemetry)
	}
}

func TestApplyConfigDefaults(t *testing.T) {
	t.Cleanup(func() {
		viper.Reset()
		*cliConfig = *newCLIConfig()
	})
	*cliConfig = *newCLIConfig()

	viper.Set("api.base_url", "http://cfg-engine:8000")
	viper.Set("api.timeout_secs", 20)
	viper.Set("api.rate_limit", 3)
	viper.Set("telemetry", true)

	testCmd := &cobra.Command{Use: "root"}
	testCmd.Flags().String("api-url", "", "")
	testCmd.Flags().Int("timeout", 60, "")
	if err := testCmd.Flags().Set("timeout", "5"); err != nil {
		t.Fatalf("failed to set timeout: %v", err)
	}
	cliConfig.API.TimeoutSecs = 5

	applyConfigDefaults(testCmd)

	if cliConfig.API.BaseURL != "http://cfg-engine:8000" {
		t.Fatalf("expected base url from config, got %s", cliConfig.API.BaseURL)
	}
	if cliConfig.API.TimeoutSecs != 5 {
		t.Fatalf("explicit --timeout must win over config, got %d", cliConfig.API.TimeoutSecs)
	}
	if cliConfig.API.RateLimit != 3 {
		t.Fatalf("expected rate limit from config, got %d", cliConfig.API.RateLimit)
	}
	if !cliConfig.TelemetryEnabled {
		t.Fatal("expected telemetry to be enabled from config")
	}
}

func TestConfigFileAndEnvironment(t *testing.T) {
	engine := newFakeEngine(t)
	resetCommandState(t)

	path := filepath.Join(t.TempDir(), "talos.yaml")
	content := "api:\n  base_url: http://127.0.0.1:1\n  timeout_secs: 7\noutput_dir: from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	// Environment beats the file; explicit flags beat both.
	t.Setenv("TALOS_API_BASE_URL", engine.URL)

	if _, err := executeCommandNoReset(t, "", "version", "--config", path); err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if cliConfig.API.BaseURL != engine.URL {
		t.Fatalf("expected env base url, got %s", cliConfig.API.BaseURL)
	}
	if cliConfig.API.TimeoutSecs != 7 {
		t.Fatalf("expected file timeout, got %d", cliConfig.API.TimeoutSecs)
	}
	if cliConfig.OutputDir != "from-file" {
		t.Fatalf("expected file output dir, got %s", cliConfig.OutputDir)
	}

	resetCommandState(t)
	t.Setenv("TALOS_API_BASE_URL", engine.URL)
	if _, err := executeCommandNoReset(t, "", "version", "--config", path, "--output-dir", "from-flag"); err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if cliConfig.OutputDir != "from-flag" {
		t.Fatalf("expected flag output dir, got %s", cliConfig.OutputDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*CLIConfig) {}},
		{name: "zero timeout", mutate: func(c *CLIConfig) { c.API.TimeoutSecs = 0 }, wantErr: true},
		{name: "negative rate", mutate: func(c *CLIConfig) { c.API.RateLimit = -1 }, wantErr: true},
		{name: "bad level", mutate: func(c *CLIConfig) { c.LogLevel = "loud" }, wantErr: true},
		{name: "debug level", mutate: func(c *CLIConfig) { c.LogLevel = "debug" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newCLIConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := newCLIConfig()
	cfg.API.TimeoutSecs = 12
	cfg.API.RateLimit = 4

	got := cfg.clientConfig()
	if got.Timeout != 12*time.Second {
		t.Fatalf("unexpected timeout: %v", got.Timeout)
	}
	if got.RateLimit != 4 || got.RateBurst != 1 {
		t.Fatalf("unexpected rate settings: %d/%d", got.RateLimit, got.RateBurst)
	}
	if got.UserAgent != "talos-cli/"+Version {
		t.Fatalf("unexpected user agent: %s", got.UserAgent)
	}
}
