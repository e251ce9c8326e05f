package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

const reportTitle = "Talos Security Report"

// Renderer builds the report document locally when the engine's export
// service is unavailable. It produces the same filename as the remote export.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// ExportReport renders r as a PDF document.
func (rd *Renderer) ExportReport(ctx context.Context, r *report.AnalysisReport) (*api.Document, error) {
	if r == nil {
		return nil, sharedErrors.NewValidationError(sharedErrors.ErrNilReport)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := rd.render(r)
	if err != nil {
		return nil, &sharedErrors.ExportRequestError{Err: err}
	}
	return &api.Document{
		Filename:    constants.ReportFilename,
		ContentType: constants.ReportContentType,
		Data:        data,
	}, nil
}

func (rd *Renderer) render(r *report.AnalysisReport) ([]byte, error) {
	view := dashboard.Build(r)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(reportTitle, true)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, "Generated: "+rd.now().UTC().Format(time.RFC3339), "", 1, "C", false, 0, "")
	if view.URL != "" {
		pdf.CellFormat(0, 5, tr("Target: "+view.URL), "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)

	// Verdict
	setClassColor(pdf, view.Score.Classification)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Verdict: %s", view.Verdict.Text)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Score: %s", view.Score.Label), "", 1, "", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	section(pdf, tr, "Risk Indicators", view.Reasons)
	section(pdf, tr, "SSL Certificate", view.SSL)
	section(pdf, tr, "Infrastructure", view.Infra)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Sandbox", "", 1, "", false, 0, "")
	if !embedScreenshot(pdf, view.Sandbox.Image) {
		lines := view.Sandbox.Lines
		if len(lines) == 0 {
			lines = []dashboard.Line{{Kind: dashboard.LineInfo, Text: dashboard.MsgScreenshotUnavailable}}
		}
		writeLines(pdf, tr, lines)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string, lines []dashboard.Line) {
	if pdf.GetY() > 250 {
		pdf.AddPage()
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "", false, 0, "")
	writeLines(pdf, tr, lines)
	pdf.Ln(3)
}

func writeLines(pdf *gofpdf.Fpdf, tr func(string) string, lines []dashboard.Line) {
	pdf.SetFont("Arial", "", 10)
	for _, line := range lines {
		setLineColor(pdf, line.Kind)
		prefix := ""
		if line.Kind == dashboard.LineWarning {
			prefix = "! "
		}
		pdf.MultiCell(0, 5, tr(prefix+line.String()), "", "", false)
	}
	pdf.SetTextColor(0, 0, 0)
}

func setClassColor(pdf *gofpdf.Fpdf, class dashboard.Classification) {
	if class == dashboard.Danger {
		pdf.SetTextColor(200, 30, 30)
		return
	}
	pdf.SetTextColor(20, 140, 60)
}

func setLineColor(pdf *gofpdf.Fpdf, kind dashboard.LineKind) {
	switch kind {
	case dashboard.LineDanger:
		pdf.SetTextColor(200, 30, 30)
	case dashboard.LineSafe:
		pdf.SetTextColor(20, 140, 60)
	case dashboard.LineWarning:
		pdf.SetTextColor(190, 120, 0)
	default:
		pdf.SetTextColor(0, 0, 0)
	}
}

// embedScreenshot places a base64 PNG/JPEG data URI on the page. Remote image
// URLs are not fetched.
func embedScreenshot(pdf *gofpdf.Fpdf, src string) bool {
	imageType, payload, ok := parseDataURI(src)
	if !ok {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return false
	}

	name := "sandbox-screenshot"
	info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(raw))
	if info == nil || pdf.Error() != nil {
		pdf.ClearError()
		return false
	}
	if pdf.GetY() > 180 {
		pdf.AddPage()
	}
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), 170, 0, true, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
	return true
}

func parseDataURI(src string) (imageType, payload string, ok bool) {
	const prefix = "data:image/"
	if !strings.HasPrefix(src, prefix) {
		return "", "", false
	}
	meta, data, found := strings.Cut(strings.TrimPrefix(src, prefix), ",")
	if !found {
		return "", "", false
	}
	kind, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return "", "", false
	}
	switch strings.ToLower(kind) {
	case "png":
		return "PNG", data, true
	case "jpeg", "jpg":
		return "JPG", data, true
	}
	return "", "", false
}
