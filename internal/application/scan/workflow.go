package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

// Analyzer submits a URL to the analysis engine.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*report.AnalysisReport, error)
}

// View is the render adapter driven by the workflow. Calls are made while the
// workflow holds its lock, so implementations must not call back into the
// Workflow.
type View interface {
	ShowScanning(url string)
	HideScanning()
	ShowSummary(summary dashboard.Summary)
	HideSummary()
	ShowDashboard(d dashboard.Dashboard)
	HideDashboard()
	Notify(p dashboard.Prompt)
}

// Recorder receives one record per finished scan. Optional.
type Recorder interface {
	RecordScan(rec Record) error
}

// Record summarizes a finished scan. It never carries the report body.
type Record struct {
	URL            string
	Succeeded      bool
	Score          float64
	Verdict        string
	Classification dashboard.Classification
	StatusCode     int
	Error          string
	Duration       time.Duration
}

// Phase is the lifecycle position of the workflow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseResultReady
	PhaseDashboardShown
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseResultReady:
		return "result_ready"
	case PhaseDashboardShown:
		return "dashboard_shown"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a snapshot of the workflow. Report is set only in
// PhaseResultReady and PhaseDashboardShown; Err only in PhaseFailed.
type State struct {
	Phase  Phase
	URL    string
	Report *report.AnalysisReport
	Err    string
}

// Workflow owns the scan lifecycle and the active report. At most one scan is
// in flight at any time.
type Workflow struct {
	analyzer Analyzer
	view     View
	recorder Recorder
	logger   *zap.Logger

	mu    sync.Mutex
	state State
	last  *report.AnalysisReport
}

// NewWorkflow creates a workflow in PhaseIdle. recorder and logger may be nil.
func NewWorkflow(analyzer Analyzer, view View, recorder Recorder, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		analyzer: analyzer,
		view:     view,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "scan-workflow")),
		state:    State{Phase: PhaseIdle},
	}
}

// State returns the current snapshot.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastReport returns the most recent successfully received report, the
// export target. A failed scan does not clear it; a newer success replaces it.
func (w *Workflow) LastReport() *report.AnalysisReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Start runs one scan of rawURL and blocks until the engine answers. An empty
// URL is rejected before any request; a call made while another scan is in
// flight returns ErrScanInProgress without side effects.
func (w *Workflow) Start(ctx context.Context, rawURL string) error {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		w.view.Notify(dashboard.EmptyURLPrompt())
		return sharedErrors.NewValidationError(sharedErrors.ErrEmptyURL)
	}

	w.mu.Lock()
	if w.state.Phase == PhaseScanning {
		inflight := w.state.URL
		w.mu.Unlock()
		w.logger.Debug("scan rejected, another scan in flight",
			zap.String("url", target),
			zap.String("inflight", inflight))
		return sharedErrors.ErrScanInProgress
	}
	w.transition(State{Phase: PhaseScanning, URL: target})
	w.view.HideSummary()
	w.view.HideDashboard()
	w.view.ShowScanning(target)
	w.mu.Unlock()

	started := time.Now()
	r, err := w.analyzer.Analyze(ctx, target)
	if err == nil && r == nil {
		err = &sharedErrors.MalformedReportError{Err: errors.New("engine returned no report")}
	}
	elapsed := time.Since(started)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		w.transition(State{Phase: PhaseFailed, URL: target, Err: err.Error()})
		w.view.HideScanning()
		w.view.HideSummary()
		w.view.Notify(dashboard.AnalysisFailedPrompt(err))
		w.logger.Warn("scan failed", zap.String("url", target), zap.Duration("duration", elapsed), zap.Error(err))
		w.record(Record{
			URL:        target,
			StatusCode: sharedErrors.StatusCode(err),
			Error:      err.Error(),
			Duration:   elapsed,
		})
		return fmt.Errorf("scan %s: %w", target, err)
	}

	w.transition(State{Phase: PhaseResultReady, URL: target, Report: r})
	w.last = r
	summary := dashboard.Summarize(r)
	w.view.HideScanning()
	w.view.ShowSummary(summary)
	w.record(Record{
		URL:            target,
		Succeeded:      true,
		Score:          r.Final.Score,
		Verdict:        r.Final.Verdict,
		Classification: summary.Classification,
		Duration:       elapsed,
	})
	return nil
}

// Confirm moves a ready result to the full dashboard.
func (w *Workflow) Confirm() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Phase != PhaseResultReady {
		return sharedErrors.NewValidationError(sharedErrors.ErrNoResult)
	}

	current := w.state
	w.view.HideSummary()
	w.view.ShowDashboard(dashboard.Build(current.Report))
	w.transition(State{Phase: PhaseDashboardShown, URL: current.URL, Report: current.Report})
	return nil
}

// transition must be called with mu held.
func (w *Workflow) transition(next State) {
	w.logger.Debug("workflow transition",
		zap.Stringer("from", w.state.Phase),
		zap.Stringer("to", next.Phase),
		zap.String("url", next.URL))
	w.state = next
}

func (w *Workflow) record(rec Record) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.RecordScan(rec); err != nil {
		w.logger.Warn("failed to record scan", zap.String("url", rec.URL), zap.Error(err))
	}
}
