package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khanhnv2901/talos-cli/internal/dashboard"
	"github.com/khanhnv2901/talos-cli/internal/domain/report"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
	sharedErrors "github.com/khanhnv2901/talos-cli/internal/shared/errors"
)

// Exporter turns a report into a downloadable document.
type Exporter interface {
	ExportReport(ctx context.Context, r *report.AnalysisReport) (*api.Document, error)
}

// Saver persists a document where the user can open it and returns its path.
type Saver interface {
	Save(doc *api.Document) (string, error)
}

// Notifier shows prompts to the user.
type Notifier interface {
	Notify(p dashboard.Prompt)
}

// Controller exports the report it is handed. It never changes scan state.
type Controller struct {
	exporter Exporter
	saver    Saver
	notifier Notifier
	logger   *zap.Logger
}

// NewController wires an export controller. logger may be nil.
func NewController(exporter Exporter, saver Saver, notifier Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		exporter: exporter,
		saver:    saver,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "export-controller")),
	}
}

// Export sends r to the exporter and saves the returned document. Without a
// report no request is made.
func (c *Controller) Export(ctx context.Context, r *report.AnalysisReport) (string, error) {
	if r == nil {
		c.notifier.Notify(dashboard.NoReportPrompt())
		return "", sharedErrors.NewValidationError(sharedErrors.ErrNoActiveReport)
	}

	doc, err := c.exporter.ExportReport(ctx, r)
	if err != nil {
		c.notifier.Notify(dashboard.ExportFailedPrompt(err))
		c.logger.Warn("report export failed", zap.Error(err))
		return "", fmt.Errorf("export report: %w", err)
	}

	path, err := c.saver.Save(doc)
	if err != nil {
		c.notifier.Notify(dashboard.ExportFailedPrompt(err))
		c.logger.Warn("saving exported report failed", zap.String("filename", doc.Filename), zap.Error(err))
		return "", fmt.Errorf("save report: %w", err)
	}

	c.logger.Info("report exported", zap.String("path", path), zap.Int("bytes", len(doc.Data)))
	c.notifier.Notify(dashboard.ExportSavedPrompt(path))
	return path, nil
}
