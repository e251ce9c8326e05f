package errors

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	// Validation errors
	ErrValidation     = errors.New("validation error")
	ErrEmptyURL       = errors.New("url cannot be empty")
	ErrNoActiveReport = errors.New("no report available to export")
	ErrNoResult       = errors.New("no scan result awaiting confirmation")
	ErrNilReport      = errors.New("report cannot be nil")

	// Workflow errors
	ErrScanInProgress = errors.New("a scan is already in progress")

	// Remote errors
	ErrAnalysisRequest = errors.New("analysis request failed")
	ErrMalformedReport = errors.New("malformed analysis report")
	ErrExportRequest   = errors.New("export request failed")
	ErrTimeout         = errors.New("request timed out")
)

// ValidationError is raised for input rejected locally, before any request is sent.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Reason == nil {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Reason == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Reason}
}

// NewValidationError wraps reason so that both errors.Is(err, ErrValidation)
// and errors.Is(err, reason) hold.
func NewValidationError(reason error) error {
	return &ValidationError{Reason: reason}
}

// AnalysisRequestError reports a failed call to the analysis endpoint.
// StatusCode is 0 when no HTTP response was received.
type AnalysisRequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AnalysisRequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", ErrAnalysisRequest, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", ErrAnalysisRequest, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrAnalysisRequest, e.StatusCode, e.Body)
}

func (e *AnalysisRequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAnalysisRequest}
	}
	return []error{ErrAnalysisRequest, e.Err}
}

// MalformedReportError indicates a 2xx analysis response whose body does not
// match the report schema.
type MalformedReportError struct {
	Err error
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedReport, e.Err)
}

func (e *MalformedReportError) Unwrap() []error {
	return []error{ErrMalformedReport, e.Err}
}

// ExportRequestError reports a failed call to the document export endpoint.
type ExportRequestError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExportRequestError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %v", ErrExportRequest, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", ErrExportRequest, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", ErrExportRequest, e.StatusCode)
}

func (e *ExportRequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExportRequest}
	}
	return []error{ErrExportRequest, e.Err}
}

// TimeoutError is returned when a remote call exceeds its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s: %s did not complete within %s", ErrTimeout, e.Op, e.Timeout)
	}
	return fmt.Sprintf("%s: %s", ErrTimeout, e.Op)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// StatusCode extracts the HTTP status carried by a remote error, or 0.
func StatusCode(err error) int {
	var analysisErr *AnalysisRequestError
	if errors.As(err, &analysisErr) {
		return analysisErr.StatusCode
	}
	var exportErr *ExportRequestError
	if errors.As(err, &exportErr) {
		return exportErr.StatusCode
	}
	return 0
}
