package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const threatReport = `{"url":"https://shop.example","final":{"score":75,"verdict":"Malicious","reasons":["Young domain","Phishing keywords"]},"ssl":{"valid":false},"infra":{"dns":{"a":["203.0.113.9"]},"geo":{"countryCode":"NL"},"whois":{"org":"Example Hosting","isp":"Edgecast"}},"sandbox":{"status":"ok"}}`

// fakeEngine is an httptest stand-in for the analysis engine.
type fakeEngine struct {
	*httptest.Server
	analyzeCalls atomic.Int32
	exportCalls  atomic.Int32
	lastExport   atomic.Value // []byte
	analyzeCode  int
	analyzeBody  string
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	return newFakeEngineWith(t, http.StatusOK, threatReport)
}

func newFakeEngineWith(t *testing.T, analyzeCode int, analyzeBody string) *fakeEngine {
	t.Helper()
	e := &fakeEngine{analyzeCode: analyzeCode, analyzeBody: analyzeBody}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analyze":
			e.analyzeCalls.Add(1)
			var req struct {
				URL string `json:"url"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if e.analyzeCode != http.StatusOK {
				http.Error(w, e.analyzeBody, e.analyzeCode)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, e.analyzeBody)
		case "/api/report/pdf":
			e.exportCalls.Add(1)
			body, _ := io.ReadAll(r.Body)
			e.lastExport.Store(body)
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "%PDF-1.4 engine document")
		case "/api/health":
			_, _ = io.WriteString(w, `{"status":"ok"}`)
		case "/api/":
			_, _ = io.WriteString(w, `{"message":"Talos API"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(e.Close)
	return e
}

func (e *fakeEngine) exportedBody() string {
	if b, ok := e.lastExport.Load().([]byte); ok {
		return string(b)
	}
	return ""
}

// executeCommand runs the root command with args and stdin, returning what
// was written to stdout. Global command state is reset first.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetCommandState(t)
	return executeCommandNoReset(t, stdin, args...)
}

func executeCommandNoReset(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetCommandState(t *testing.T) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	originalNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = originalNoColor })

	viper.Reset()
	t.Cleanup(viper.Reset)
	cfgFile = ""
	*cliConfig = *newCLIConfig()
	resetFlags(rootCmd)

	originalCtx := globalAppContext
	t.Cleanup(func() { globalAppContext = originalCtx })
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	c.SetContext(context.Background())
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
