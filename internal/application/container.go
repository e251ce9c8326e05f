package application

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	exportapp "github.com/khanhnv2901/talos-cli/internal/application/export"
	scanapp "github.com/khanhnv2901/talos-cli/internal/application/scan"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/download"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/pdf"
	"github.com/khanhnv2901/talos-cli/internal/infrastructure/telemetry"
)

var (
	_ scanapp.Analyzer   = (*api.Client)(nil)
	_ exportapp.Exporter = (*api.Client)(nil)
	_ exportapp.Exporter = (*pdf.Renderer)(nil)
	_ exportapp.Saver    = (*download.FileSaver)(nil)
	_ scanapp.Recorder   = (*telemetry.Recorder)(nil)
)

// Config selects the adapters the container wires together.
type Config struct {
	API       api.Config
	OutputDir string
	DataDir   string
	Telemetry bool
	// Offline renders exports locally instead of calling the engine.
	Offline bool
}

// Container holds all application services and their adapters
// This is a simple dependency injection container
type Container struct {
	// Adapters
	Client    *api.Client
	Saver     *download.FileSaver
	Renderer  *pdf.Renderer
	Telemetry *telemetry.Recorder // nil unless enabled

	// Services
	Workflow *scanapp.Workflow
	Exporter *exportapp.Controller
}

// NewContainer creates a new application service container. view receives
// both workflow events and export prompts.
func NewContainer(cfg Config, view scanapp.View, logger *zap.Logger) (*Container, error) {
	if view == nil {
		return nil, errors.New("view is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := api.NewClient(cfg.API, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	c := &Container{
		Client:   client,
		Saver:    download.NewFileSaver(cfg.OutputDir),
		Renderer: pdf.NewRenderer(),
	}

	var recorder scanapp.Recorder
	if cfg.Telemetry {
		rec, err := telemetry.NewRecorder(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry recorder: %w", err)
		}
		c.Telemetry = rec
		recorder = rec
	}

	var exporter exportapp.Exporter = client
	if cfg.Offline {
		exporter = c.Renderer
	}

	c.Workflow = scanapp.NewWorkflow(client, view, recorder, logger)
	c.Exporter = exportapp.NewController(exporter, c.Saver, view, logger)
	return c, nil
}
