package dashboard

import (
	"fmt"

	"github.com/khanhnv2901/talos-cli/internal/domain/report"
)

// Classification is the two-way verdict styling derived from a score.
type Classification string

const (
	Safe   Classification = "safe"
	Danger Classification = "danger"
)

// LineKind tells a renderer how to style a single dashboard line.
type LineKind string

const (
	LineInfo    LineKind = "info"
	LineSafe    LineKind = "safe"
	LineDanger  LineKind = "danger"
	LineWarning LineKind = "warning"
)

const (
	HeadlineThreat = "THREAT DETECTED"
	HeadlineSafe   = "SITE SAFE"

	MsgNoRiskIndicators      = "No risk indicators detected"
	MsgValidCertificate      = "Valid certificate"
	MsgInvalidSSL            = "SSL invalid or absent"
	MsgDataUnavailable       = "Data unavailable"
	MsgScreenshotUnavailable = "Screenshot unavailable"
	IssuerPlaceholder        = "N/A"
)

// Line is one rendered row of a dashboard block.
type Line struct {
	Kind  LineKind `json:"kind"`
	Label string   `json:"label,omitempty"`
	Text  string   `json:"text"`
}

func (l Line) String() string {
	if l.Label == "" {
		return l.Text
	}
	return l.Label + ": " + l.Text
}

// Summary is the transient view shown right after a scan completes.
type Summary struct {
	URL            string         `json:"url,omitempty"`
	Score          float64        `json:"score"`
	ScoreLabel     string         `json:"score_label"`
	Headline       string         `json:"headline"`
	Verdict        string         `json:"verdict"`
	Classification Classification `json:"classification"`
}

// ScoreBlock renders the numeric score.
type ScoreBlock struct {
	Label          string         `json:"label"`
	Classification Classification `json:"classification"`
}

// VerdictBlock renders the engine's verdict text.
type VerdictBlock struct {
	Text           string         `json:"text"`
	Classification Classification `json:"classification"`
}

// SandboxBlock carries either an image reference or a fallback line.
type SandboxBlock struct {
	Image string `json:"image,omitempty"`
	Lines []Line `json:"lines,omitempty"`
}

// Dashboard is the full report view.
type Dashboard struct {
	URL     string       `json:"url,omitempty"`
	Score   ScoreBlock   `json:"score"`
	Verdict VerdictBlock `json:"verdict"`
	Reasons []Line       `json:"reasons"`
	SSL     []Line       `json:"ssl"`
	Infra   []Line       `json:"infra"`
	Sandbox SandboxBlock `json:"sandbox"`
}

// Classify returns Danger for scores strictly above the threat threshold.
func Classify(score float64) Classification {
	if report.IsThreatScore(score) {
		return Danger
	}
	return Safe
}

func classifyFinal(f report.Final) Classification {
	if f.IsThreat() {
		return Danger
	}
	return Safe
}

// ScoreLabel formats a score as "{score}/100".
func ScoreLabel(score float64) string {
	return fmt.Sprintf("%s/100", report.FormatScore(score))
}

// Summarize builds the transient summary for r.
func Summarize(r *report.AnalysisReport) Summary {
	class := classifyFinal(r.Final)
	headline := HeadlineSafe
	if class == Danger {
		headline = HeadlineThreat
	}
	return Summary{
		URL:            r.URL,
		Score:          r.Final.Score,
		ScoreLabel:     ScoreLabel(r.Final.Score),
		Headline:       headline,
		Verdict:        r.Final.Verdict,
		Classification: class,
	}
}

// Build maps r to the full dashboard. Each block degrades on its own when
// its source data is missing.
func Build(r *report.AnalysisReport) Dashboard {
	class := classifyFinal(r.Final)
	return Dashboard{
		URL:     r.URL,
		Score:   ScoreBlock{Label: ScoreLabel(r.Final.Score), Classification: class},
		Verdict: VerdictBlock{Text: r.Final.Verdict, Classification: class},
		Reasons: ReasonLines(r.Final.Reasons),
		SSL:     SSLLines(r.SSL),
		Infra:   InfraLines(r.Infra),
		Sandbox: SandboxView(r.Sandbox),
	}
}

// ReasonLines emits one warning per reason in order, or a single safe line.
func ReasonLines(reasons []string) []Line {
	if len(reasons) == 0 {
		return []Line{{Kind: LineSafe, Text: MsgNoRiskIndicators}}
	}
	lines := make([]Line, 0, len(reasons))
	for _, reason := range reasons {
		lines = append(lines, Line{Kind: LineWarning, Text: reason})
	}
	return lines
}

// SSLLines treats an absent section the same as an invalid certificate.
func SSLLines(ssl *report.SSL) []Line {
	if ssl == nil || !ssl.Valid {
		return []Line{{Kind: LineDanger, Text: MsgInvalidSSL}}
	}
	issuer := ssl.Issuer
	if issuer == "" {
		issuer = IssuerPlaceholder
	}
	return []Line{
		{Kind: LineSafe, Text: MsgValidCertificate},
		{Kind: LineInfo, Label: "Issuer", Text: issuer},
	}
}

// InfraLines emits IP, country and organization when present.
func InfraLines(infra report.Infra) []Line {
	var lines []Line
	if ip, ok := infra.PrimaryIP(); ok {
		lines = append(lines, Line{Kind: LineInfo, Label: "IP", Text: ip})
	}
	if cc, ok := infra.CountryCode(); ok {
		lines = append(lines, Line{Kind: LineInfo, Label: "Country", Text: cc})
	}
	if org, ok := infra.Organization(); ok {
		lines = append(lines, Line{Kind: LineInfo, Label: "Org", Text: org})
	}
	if len(lines) == 0 {
		return []Line{{Kind: LineInfo, Text: MsgDataUnavailable}}
	}
	return lines
}

func SandboxView(sandbox *report.Sandbox) SandboxBlock {
	if sandbox == nil || sandbox.Screenshot == "" {
		return SandboxBlock{Lines: []Line{{Kind: LineInfo, Text: MsgScreenshotUnavailable}}}
	}
	return SandboxBlock{Image: sandbox.Screenshot}
}
