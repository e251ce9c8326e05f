package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// ReportFilename is the fixed name offered for every exported document.
	ReportFilename = "talos-report.pdf"
	// ReportContentType is the media type of exported documents.
	ReportContentType = "application/pdf"
	// ThreatThreshold is the highest score still presented as safe.
	ThreatThreshold = 50.0
	// MaxScore is the upper bound of the engine's risk score.
	MaxScore = 100.0
)

const (
	// DefaultAPIBaseURL points at a locally running analysis engine.
	DefaultAPIBaseURL = "http://localhost:8000"
	// DefaultRequestTimeout bounds a single analyze or export call.
	DefaultRequestTimeout = 60 * time.Second
	// MaxReportBytes caps an analysis response; it may embed a screenshot data URI.
	MaxReportBytes = 8 << 20
	// MaxDocumentBytes caps an exported document.
	MaxDocumentBytes = 32 << 20
	// ErrorBodyLimitBytes caps how much of an error response body we keep for diagnostics.
	ErrorBodyLimitBytes = 2048
)
