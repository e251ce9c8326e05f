package cmd

import (
	"errors"
	"fmt"
	"io"

	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

// InvalidSettingError reports a flag or config value that cannot be used.
type InvalidSettingError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidSettingError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid value %v for %s", e.Value, e.Name)
	}
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Name, e.Reason)
}

// ReportFileError signals that a saved report could not be loaded for export.
type ReportFileError struct {
	Path string
	Err  error
}

func (e *ReportFileError) Error() string {
	return fmt.Sprintf("cannot load report %s: %v", e.Path, e.Err)
}

func (e *ReportFileError) Unwrap() error {
	return e.Err
}

// reportedError marks a failure the view has already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func alreadyReported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// printError writes err for the user unless it was already shown. The hint
// is printed in both cases.
func printError(w io.Writer, err error) {
	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(w, colorError("Error:"), err)
	}
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, colorWarn("Hint:"), hint)
	}
}

// errorHint returns a follow-up suggestion for well-known failures, or "".
func errorHint(err error) string {
	var timeoutErr *sharedErrors.TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		return "the engine is slow or unreachable; raise --timeout or check --api-url"
	case errors.Is(err, sharedErrors.ErrAnalysisRequest) && sharedErrors.StatusCode(err) == 0:
		return "is the analysis engine running? check --api-url"
	case errors.Is(err, sharedErrors.ErrMalformedReport):
		return "the engine answered with an unexpected payload"
	}
	return ""
}
