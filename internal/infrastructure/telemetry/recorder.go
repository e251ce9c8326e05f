// Package telemetry appends local scan statistics to a JSON-lines file.
// Nothing is sent over the network.
package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/khanhnv2901/talos-cli/internal/application/scan"
	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

// Filename is the name of the telemetry log inside the data directory.
const Filename = "scans.jsonl"

type record struct {
	Timestamp       time.Time `json:"timestamp"`
	URL             string    `json:"url"`
	Succeeded       bool      `json:"succeeded"`
	Score           *float64  `json:"score,omitempty"`
	Verdict         string    `json:"verdict,omitempty"`
	Classification  string    `json:"classification,omitempty"`
	StatusCode      int       `json:"status_code,omitempty"`
	Error           string    `json:"error,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// Recorder writes one line per scan.
type Recorder struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewRecorder creates dir when missing and returns a recorder for dir/scans.jsonl.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, errors.New("telemetry directory is required")
	}
	if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}
	return &Recorder{
		path: LogPath(dir),
		now:  time.Now,
	}, nil
}

// RecordScan implements scan.Recorder.
func (r *Recorder) RecordScan(rec scan.Record) error {
	entry := record{
		Timestamp:       r.now().UTC(),
		URL:             rec.URL,
		Succeeded:       rec.Succeeded,
		Verdict:         rec.Verdict,
		Classification:  string(rec.Classification),
		StatusCode:      rec.StatusCode,
		Error:           rec.Error,
		DurationSeconds: rec.Duration.Seconds(),
	}
	if rec.Succeeded {
		score := rec.Score
		entry.Score = &score
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}
	return nil
}

// Summary aggregates the records written so far.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	Threats     int
	SuccessRate float64
	AvgDuration time.Duration
}

// Summarize reads the log back. A missing file yields an empty summary.
func (r *Recorder) Summarize() (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SummarizeFile(r.path)
}

// LogPath returns where a recorder for dir writes its log.
func LogPath(dir string) string {
	return filepath.Join(dir, Filename)
}

// SummarizeFile aggregates the log at path without creating anything. A
// missing file yields an empty summary.
func SummarizeFile(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("read telemetry: %w", err)
	}

	var (
		s     Summary
		total float64
	)
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var entry record
		if err := dec.Decode(&entry); err != nil {
			return Summary{}, fmt.Errorf("decode telemetry: %w", err)
		}
		s.Total++
		total += entry.DurationSeconds
		if entry.Succeeded {
			s.Succeeded++
			if entry.Classification == string(dashboard.Danger) {
				s.Threats++
			}
		} else {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Total) * 100
		s.AvgDuration = time.Duration(total / float64(s.Total) * float64(time.Second))
	}
	return s, nil
}
