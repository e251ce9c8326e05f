package cmd

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

func TestScanShowsSummaryAndDashboard(t *testing.T) {
	engine := newFakeEngine(t)

	out, err := executeCommand(t, "", "scan", "https://shop.example", "--yes", "--api-url", engine.URL)
	if err != nil {
		t.Fatalf("scan returned error: %v\noutput:\n%s", err, out)
	}

	for _, want := range []string{
		"THREAT DETECTED",
		"75/100",
		"Verdict: Malicious",
		"Young domain",
		"SSL invalid or absent",
		"IP: 203.0.113.9",
		"Country: NL",
		"Org: Example Hosting",
		"Screenshot unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\noutput:\n%s", want, out)
		}
	}
	if got := engine.analyzeCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one analyze request, got %d", got)
	}
}

func TestScanDeclinedDashboard(t *testing.T) {
	engine := newFakeEngine(t)

	out, err := executeCommand(t, "n\n", "scan", "shop.example", "--api-url", engine.URL)
	if err != nil {
		t.Fatalf("scan returned error: %v", err)
	}
	if !strings.Contains(out, "THREAT DETECTED") {
		t.Fatalf("expected summary, got:\n%s", out)
	}
	if strings.Contains(out, "-- Heuristics --") {
		t.Fatalf("dashboard should not be shown when declined:\n%s", out)
	}
}

func TestScanEngineFailure(t *testing.T) {
	engine := newFakeEngineWith(t, http.StatusInternalServerError, "internal error")

	out, err := executeCommand(t, "", "scan", "shop.example", "--yes", "--api-url", engine.URL)
	if err == nil {
		t.Fatal("expected scan to fail")
	}
	if sharedErrors.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected status 500 in error chain, got %v", err)
	}
	if !strings.Contains(out, "Analysis failed: Error 500: internal error") {
		t.Fatalf("expected failure prompt, got:\n%s", out)
	}

	var stderr strings.Builder
	printError(&stderr, err)
	if strings.Contains(stderr.String(), "internal error") {
		t.Fatalf("failure already shown by the view was printed again: %q", stderr.String())
	}
}

func TestScanBlankURLSendsNothing(t *testing.T) {
	engine := newFakeEngine(t)

	out, err := executeCommand(t, "", "scan", "   ", "--api-url", engine.URL)
	if !errors.Is(err, sharedErrors.ErrEmptyURL) {
		t.Fatalf("expected ErrEmptyURL, got %v", err)
	}
	if !strings.Contains(out, "Please enter a URL to analyze") {
		t.Fatalf("expected empty url prompt, got:\n%s", out)
	}
	if got := engine.analyzeCalls.Load(); got != 0 {
		t.Fatalf("expected no analyze request, got %d", got)
	}
}

func TestScanWritesArtifactsAndExports(t *testing.T) {
	engine := newFakeEngine(t)
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "report.json")
	htmlPath := filepath.Join(dir, "out", "dashboard.html")
	outputDir := filepath.Join(dir, "exports")

	out, err := executeCommand(t, "",
		"scan", "shop.example", "--yes",
		"--api-url", engine.URL,
		"--json", jsonPath,
		"--html", htmlPath,
		"--export",
		"--output-dir", outputDir,
	)
	if err != nil {
		t.Fatalf("scan returned error: %v\noutput:\n%s", err, out)
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	saved, err := report.Decode(raw)
	if err != nil {
		t.Fatalf("saved json does not decode: %v", err)
	}
	if saved.Final.Score != 75 {
		t.Fatalf("unexpected saved score: %v", saved.Final.Score)
	}
	if !strings.Contains(string(raw), `"isp": "Edgecast"`) {
		t.Fatalf("expected unmodeled fields to survive, got:\n%s", raw)
	}

	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(html), "75/100") {
		t.Fatal("expected score in html dashboard")
	}

	pdf, err := os.ReadFile(filepath.Join(outputDir, "talos-report.pdf"))
	if err != nil {
		t.Fatalf("read exported pdf: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatal("expected engine document to be saved")
	}
	if !strings.Contains(engine.exportedBody(), `"isp":"Edgecast"`) {
		t.Fatalf("expected full report to be exported, got %s", engine.exportedBody())
	}
	if !strings.Contains(out, "Report saved to ") {
		t.Fatalf("expected saved prompt, got:\n%s", out)
	}
}

func TestScanOfflineExport(t *testing.T) {
	engine := newFakeEngine(t)
	outputDir := t.TempDir()

	_, err := executeCommand(t, "", "scan", "shop.example", "--yes", "--export", "--offline",
		"--api-url", engine.URL, "--output-dir", outputDir)
	if err != nil {
		t.Fatalf("scan returned error: %v", err)
	}
	if got := engine.exportCalls.Load(); got != 0 {
		t.Fatalf("offline export must not reach the engine, got %d calls", got)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "talos-report.pdf")); err != nil {
		t.Fatalf("expected local pdf: %v", err)
	}
}

func TestScanRequiresURLArgument(t *testing.T) {
	if _, err := executeCommand(t, "", "scan"); err == nil {
		t.Fatal("expected error without url argument")
	}
}
