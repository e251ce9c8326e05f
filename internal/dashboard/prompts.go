package dashboard

import (
	"errors"
	"fmt"
	"strings"

	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

// PromptKind identifies which user-facing notification is being raised.
type PromptKind string

const (
	PromptEmptyURL       PromptKind = "empty_url"
	PromptNoReport       PromptKind = "no_report"
	PromptAnalysisFailed PromptKind = "analysis_failed"
	PromptExportFailed   PromptKind = "export_failed"
	PromptExportSaved    PromptKind = "export_saved"
)

// Prompt is a notification the view must show to the user.
type Prompt struct {
	Kind    PromptKind
	Level   LineKind
	Message string
}

func (p Prompt) String() string {
	return p.Message
}

func EmptyURLPrompt() Prompt {
	return Prompt{Kind: PromptEmptyURL, Level: LineWarning, Message: "Please enter a URL to analyze"}
}

func NoReportPrompt() Prompt {
	return Prompt{Kind: PromptNoReport, Level: LineWarning, Message: "No data to export, run a scan first"}
}

// AnalysisFailedPrompt describes a failed scan. HTTP status and response body
// are included whenever the error carries them.
func AnalysisFailedPrompt(err error) Prompt {
	return Prompt{Kind: PromptAnalysisFailed, Level: LineDanger, Message: "Analysis failed: " + describe(err)}
}

func ExportFailedPrompt(err error) Prompt {
	return Prompt{Kind: PromptExportFailed, Level: LineDanger, Message: "Report export failed: " + describe(err)}
}

func ExportSavedPrompt(path string) Prompt {
	return Prompt{Kind: PromptExportSaved, Level: LineSafe, Message: "Report saved to " + path}
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}

	var analysisErr *sharedErrors.AnalysisRequestError
	if errors.As(err, &analysisErr) && analysisErr.StatusCode != 0 {
		return statusDetail(analysisErr.StatusCode, analysisErr.Body)
	}
	var exportErr *sharedErrors.ExportRequestError
	if errors.As(err, &exportErr) && exportErr.StatusCode != 0 {
		return statusDetail(exportErr.StatusCode, exportErr.Body)
	}
	return err.Error()
}

func statusDetail(status int, body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Sprintf("Error %d", status)
	}
	return fmt.Sprintf("Error %d: %s", status, body)
}
